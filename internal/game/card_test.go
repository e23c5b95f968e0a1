package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCards(t *testing.T, names ...string) []Card {
	t.Helper()
	cards := make([]Card, len(names))
	for i, n := range names {
		c, err := ParseCard(n)
		require.NoError(t, err, n)
		cards[i] = c
	}
	return cards
}

func TestCardNotation(t *testing.T) {
	for i := 0; i < DeckSize; i++ {
		c := cardAt(i)
		parsed, err := ParseCard(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	qs, err := ParseCard("QS")
	require.NoError(t, err)
	assert.Equal(t, QueenOfSpades, qs)
	assert.Equal(t, Queen, qs.Rank())
	assert.Equal(t, Spades, qs.Suit())

	for _, bad := range []string{"", "1c", "qx", "10h", "q"} {
		_, err := ParseCard(bad)
		assert.ErrorIs(t, err, ErrUnknownCard, bad)
	}
}

func TestNewCardRejectsOutOfDeck(t *testing.T) {
	assert.Panics(t, func() { NewCard(Ace+1, Clubs) })
	assert.Panics(t, func() { NewCard(Two-1, Hearts) })
	assert.Panics(t, func() { NewCard(Two, Diamonds+1) })
	assert.NotPanics(t, func() { NewCard(Ace, Diamonds) })

	var zero Card
	assert.Equal(t, "2c", zero.String())
	assert.Equal(t, TwoOfClubs, zero)
}

func TestCardPoints(t *testing.T) {
	assert.Equal(t, 13, QueenOfSpades.Points())
	assert.Equal(t, 1, NewCard(Two, Hearts).Points())
	assert.Equal(t, 1, NewCard(Ace, Hearts).Points())
	assert.Equal(t, 0, NewCard(Queen, Clubs).Points())
	assert.Equal(t, 0, NewCard(King, Spades).Points())

	assert.Equal(t, RoundPoints, TrickPoints(NewDeck().Cards))
}

func TestCardJSON(t *testing.T) {
	data, err := json.Marshal(mustCards(t, "qs", "2c", "th"))
	require.NoError(t, err)
	assert.JSONEq(t, `["qs","2c","th"]`, string(data))

	var cards []Card
	require.NoError(t, json.Unmarshal([]byte(`["ah","9d"]`), &cards))
	assert.Equal(t, mustCards(t, "ah", "9d"), cards)

	assert.Error(t, json.Unmarshal([]byte(`["zz"]`), &cards))
}

func TestTrickWinner(t *testing.T) {
	tests := []struct {
		name  string
		trick []string
		want  int
	}{
		{"leader keeps it", []string{"ac", "2c", "kc", "qc"}, 0},
		{"higher follower", []string{"2c", "3c", "ac", "kc"}, 2},
		{"off-suit cards never win", []string{"5d", "as", "ah", "6d"}, 3},
		{"only leader in suit", []string{"2s", "ac", "ad", "ah"}, 0},
		{"queen of spades taken by king", []string{"ts", "qs", "ks", "2c"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrickWinner(mustCards(t, tt.trick...)))
		})
	}
}

func TestSortHand(t *testing.T) {
	hand := mustCards(t, "ah", "2c", "qs", "td", "3c", "2h")
	sorted := SortHand(hand)

	assert.Equal(t, mustCards(t, "2c", "3c", "td", "qs", "2h", "ah"), sorted)
	assert.Equal(t, mustCards(t, "ah", "2c", "qs", "td", "3c", "2h"), hand, "input must not be reordered")
}

func TestShuffledDeck(t *testing.T) {
	deck, err := NewShuffledDeck()
	require.NoError(t, err)
	require.Len(t, deck.Cards, DeckSize)

	seen := make(map[Card]bool)
	for _, c := range deck.Cards {
		assert.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
	}

	hand, ok := deck.Draw(HandSize)
	require.True(t, ok)
	assert.Len(t, hand, HandSize)
	assert.Equal(t, DeckSize-HandSize, deck.RemainingCards())

	_, ok = deck.Draw(DeckSize)
	assert.False(t, ok)
}
