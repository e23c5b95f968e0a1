package game

import "time"

// StateView is the private snapshot sent with the "state" event.
type StateView struct {
	ID             string        `json:"id"`
	Status         TableStatus   `json:"status"`
	Players        []PlayerView  `json:"players"`
	RoundNumber    int           `json:"round_number"`
	Table          []Card        `json:"table"`
	ScoreOpened    bool          `json:"score_opened"`
	WaitingForPass bool          `json:"waiting_for_pass"`
	Votes          []int64       `json:"votes"`
	ChatMessages   []ChatMessage `json:"chat_messages"`
	Hand           []Card        `json:"hand"`
	CreatedAt      time.Time     `json:"created_at"`
	StartedAt      *time.Time    `json:"started_at"`
}

func (t *Table) stateFor(p *Player) StateView {
	view := StateView{
		ID:             t.ID,
		Status:         t.status,
		Players:        t.playerViews(),
		RoundNumber:    t.roundNumber,
		Table:          t.trickCopy(),
		ScoreOpened:    t.scoreOpened,
		WaitingForPass: t.waitingForPass,
		Votes:          make([]int64, 0, len(t.votes)),
		ChatMessages:   make([]ChatMessage, 0, len(t.chat)),
		Hand:           SortHand(p.Hand),
		CreatedAt:      t.createdAt,
	}
	if !t.startedAt.IsZero() {
		started := t.startedAt
		view.StartedAt = &started
	}
	for _, seated := range t.players {
		if _, ok := t.votes[seated.ID]; ok {
			view.Votes = append(view.Votes, seated.ID)
		}
	}
	for _, msg := range t.chat {
		if msg.PrivateTo == nil || *msg.PrivateTo == p.ID || msg.Player == p.ID {
			view.ChatMessages = append(view.ChatMessages, msg)
		}
	}
	return view
}

func (t *Table) sendState(p *Player) {
	t.notify(p, EventState, t.stateFor(p))
}

func (t *Table) playerViews() []PlayerView {
	views := make([]PlayerView, len(t.players))
	for i, p := range t.players {
		views[i] = p.View()
	}
	return views
}

func (t *Table) trickCopy() []Card {
	trick := make([]Card, len(t.trick))
	copy(trick, t.trick)
	return trick
}

// seats returns the players that receive table broadcasts.
func (t *Table) seats() []*Player {
	seats := make([]*Player, 0, len(t.players))
	for _, p := range t.players {
		if !p.departed {
			seats = append(seats, p)
		}
	}
	return seats
}

func (t *Table) notify(p *Player, event string, data any) {
	if p.IsBot || p.departed {
		return
	}
	id := p.ID
	t.notifier.NotifyPlayer(p, Notification{
		Event:     event,
		Player:    &id,
		Data:      data,
		CreatedAt: time.Now(),
	})
}

func (t *Table) broadcast(event string, data any) {
	t.notifier.NotifyTable(t.seats(), Notification{
		Event:     event,
		Data:      data,
		CreatedAt: time.Now(),
	})
}

func (t *Table) broadcastPlayers() {
	t.broadcast(EventPlayers, map[string]any{"players": t.playerViews()})
}

func (t *Table) broadcastTable() {
	t.broadcast(EventTable, map[string]any{
		"table":        t.trickCopy(),
		"score_opened": t.scoreOpened,
	})
}
