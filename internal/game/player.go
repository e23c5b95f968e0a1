package game

import (
	"sync/atomic"
)

// Player is one participant. Hand, PassCards and Scores belong to the table
// the player is seated at and are only touched under that table's lock.
type Player struct {
	ID          int64
	DisplayName string

	Hand      []Card
	PassCards []Card
	// Scores holds one entry per round, index = round number.
	Scores []int

	AutoPlay bool
	IsBot    bool

	// departed marks a seat its identity walked away from. It keeps
	// auto-playing but gets no events.
	departed bool
}

// NewPlayer creates a human player.
func NewPlayer(id int64, displayName string) *Player {
	return &Player{ID: id, DisplayName: displayName}
}

var botSeq atomic.Int64

var botNames = []string{
	"Ada Finch", "Bruno Hale", "Cora Vance", "Dexter Moss",
	"Elena Park", "Felix Brandt", "Greta Lowe", "Hugo Marsh",
	"Iris Quinn", "Jonas Reed", "Kira Wolfe", "Leo Sutton",
}

// NewBot creates an auto-played seat. Bots get unique negative ids so they
// never collide with real identities.
func NewBot() *Player {
	n := botSeq.Add(1)
	return &Player{
		ID:          -n,
		DisplayName: botNames[int(n-1)%len(botNames)],
		AutoPlay:    true,
		IsBot:       true,
	}
}

// lastScore returns the current round's score entry.
func (p *Player) lastScore() int {
	if len(p.Scores) == 0 {
		return 0
	}
	return p.Scores[len(p.Scores)-1]
}

func (p *Player) removeFromHand(c Card) bool {
	i := indexOf(p.Hand, c)
	if i < 0 {
		return false
	}
	p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	return true
}

// PlayerView is the public projection of a player.
type PlayerView struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	Scores      []int  `json:"scores"`
	AutoPlay    bool   `json:"auto_move"`
	IsBot       bool   `json:"is_bot"`
}

func (p *Player) View() PlayerView {
	scores := make([]int, len(p.Scores))
	copy(scores, p.Scores)
	return PlayerView{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Scores:      scores,
		AutoPlay:    p.AutoPlay,
		IsBot:       p.IsBot,
	}
}
