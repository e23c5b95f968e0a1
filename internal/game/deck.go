package game

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

type Deck struct {
	Cards []Card
}

// NewDeck creates the 52 cards in suit order.
func NewDeck() *Deck {
	deck := &Deck{Cards: make([]Card, 0, DeckSize)}
	for i := 0; i < DeckSize; i++ {
		deck.Cards = append(deck.Cards, cardAt(i))
	}
	return deck
}

// Shuffle randomizes the order of cards in the deck using crypto/rand.
func (d *Deck) Shuffle() error {
	// Fisher-Yates shuffle algorithm
	for i := len(d.Cards) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("shuffle deck: %w", err)
		}
		j := int(n.Int64())
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
	return nil
}

// Draw removes and returns the top n cards.
func (d *Deck) Draw(n int) ([]Card, bool) {
	if n > len(d.Cards) {
		return nil, false
	}
	drawn := make([]Card, n)
	copy(drawn, d.Cards[:n])
	d.Cards = d.Cards[n:]
	return drawn, true
}

// RemainingCards returns the number of cards left in the deck
func (d *Deck) RemainingCards() int {
	return len(d.Cards)
}

// NewShuffledDeck returns a fresh random permutation of the 52 cards.
func NewShuffledDeck() (*Deck, error) {
	d := NewDeck()
	if err := d.Shuffle(); err != nil {
		return nil, err
	}
	return d, nil
}
