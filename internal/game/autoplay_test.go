package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChooseAutoMove(t *testing.T) {
	tests := []struct {
		name  string
		hand  []string
		trick []string
		want  string
	}{
		{"lead lowest non-point card", []string{"ah", "2h", "5s", "3d"}, nil, "3d"},
		{"lead two of clubs", []string{"2c", "2d", "2s", "qs"}, nil, "2c"},
		{"lead lowest heart when only points held", []string{"qs", "9h", "4h"}, nil, "4h"},
		{"follow with lowest of led suit", []string{"ks", "4s", "2c", "ah"}, []string{"ts"}, "4s"},
		{"void dumps queen of spades", []string{"qs", "ah", "kd"}, []string{"2c"}, "qs"},
		{"void dumps highest heart", []string{"3h", "jh", "ad"}, []string{"2c", "5c"}, "jh"},
		{"void without points dumps highest rank", []string{"3d", "kd", "as"}, []string{"2h"}, "as"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chooseAutoMove(mustCards(t, tt.hand...), mustCards(t, tt.trick...))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestPassFallback(t *testing.T) {
	hand := mustCards(t, "2c", "qs", "ah", "kd")
	assert.Equal(t, QueenOfSpades, passFallback(hand))
}
