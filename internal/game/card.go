package game

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type Suit uint8
type Rank uint8

// Suits in deck construction order.
const (
	Clubs Suit = iota
	Hearts
	Spades
	Diamonds
)

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const (
	suitLetters = "chsd"
	rankLetters = "23456789tjqka"

	// DeckSize is the number of distinct cards.
	DeckSize = 52
	// HandSize is the number of cards dealt to each seat.
	HandSize = 13
	// RoundPoints is the total point value of a full deck.
	RoundPoints = 26
)

// Card is one of the 52 cards. The code is suit*13 + (rank-2) and can only
// be set through NewCard, ParseCard or the JSON codec, so every Card value
// is a real card. The zero Card is the two of clubs.
type Card struct {
	code uint8
}

// NewCard builds the card with the given rank and suit. It panics on a rank
// or suit outside the deck.
func NewCard(r Rank, s Suit) Card {
	if r < Two || r > Ace || s > Diamonds {
		panic(fmt.Sprintf("game: no card with rank %d and suit %d", r, s))
	}
	return Card{code: uint8(s)*13 + uint8(r-Two)}
}

// cardAt returns the card with the given code, 0..DeckSize-1.
func cardAt(i int) Card {
	return NewCard(Rank(i%13)+Two, Suit(i/13))
}

// TwoOfClubs leads the first trick of every round.
var TwoOfClubs = NewCard(Two, Clubs)

// QueenOfSpades is worth 13 points.
var QueenOfSpades = NewCard(Queen, Spades)

func (c Card) Suit() Suit { return Suit(c.code / 13) }
func (c Card) Rank() Rank { return Rank(c.code%13) + Two }

// Points is the penalty value of the card.
func (c Card) Points() int {
	switch {
	case c == QueenOfSpades:
		return 13
	case c.Suit() == Hearts:
		return 1
	default:
		return 0
	}
}

func (c Card) String() string {
	return string([]byte{rankLetters[c.Rank()-Two], suitLetters[c.Suit()]})
}

// ParseCard reads the two letter notation, e.g. "qs", "2c", "th".
func ParseCard(s string) (Card, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrUnknownCard, s)
	}
	r := strings.IndexByte(rankLetters, s[0])
	st := strings.IndexByte(suitLetters, s[1])
	if r < 0 || st < 0 {
		return Card{}, fmt.Errorf("%w: %q", ErrUnknownCard, s)
	}
	return NewCard(Rank(r)+Two, Suit(st)), nil
}

func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Card) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCard(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// sortOrder places suits as clubs, diamonds, spades, hearts.
var sortOrder = [4]int{Clubs: 0, Diamonds: 1, Spades: 2, Hearts: 3}

// SortHand returns a copy of the hand ordered by suit then rank.
func SortHand(hand []Card) []Card {
	sorted := make([]Card, len(hand))
	copy(sorted, hand)
	sort.Slice(sorted, func(i, j int) bool {
		return cardLess(sorted[i], sorted[j])
	})
	return sorted
}

func cardLess(a, b Card) bool {
	if a.Suit() != b.Suit() {
		return sortOrder[a.Suit()] < sortOrder[b.Suit()]
	}
	return a.Rank() < b.Rank()
}

// TrickWinner returns the index of the highest card of the led suit.
func TrickWinner(trick []Card) int {
	if len(trick) == 0 {
		panic("game: winner of an empty trick")
	}
	led := trick[0].Suit()
	best := 0
	for i, c := range trick {
		if c.Suit() == led && c.Rank() > trick[best].Rank() {
			best = i
		}
	}
	return best
}

// TrickPoints sums the point value of the cards.
func TrickPoints(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Points()
	}
	return total
}

func indexOf(cards []Card, c Card) int {
	for i, x := range cards {
		if x == c {
			return i
		}
	}
	return -1
}

func hasSuit(cards []Card, s Suit) bool {
	for _, c := range cards {
		if c.Suit() == s {
			return true
		}
	}
	return false
}
