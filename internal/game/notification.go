package game

import "time"

// Event kinds emitted by a table.
const (
	EventJoined       = "joined"
	EventLeft         = "left"
	EventPlayers      = "players"
	EventHand         = "hand"
	EventWaitingPass  = "waiting_pass"
	EventPass         = "pass"
	EventGot          = "got"
	EventTable        = "table"
	EventTook         = "took"
	EventShootTheMoon = "shoot_the_moon"
	EventChat         = "chat"
	EventState        = "state"
	EventError        = "error"
)

// Notification is an ephemeral event. A nil Player means the whole table.
type Notification struct {
	Event     string    `json:"event"`
	Player    *int64    `json:"player"`
	Data      any       `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier delivers table events. Implementations must not block and must
// not call back into the table.
type Notifier interface {
	NotifyPlayer(p *Player, n Notification)
	NotifyTable(seats []*Player, n Notification)
}

type nopNotifier struct{}

func (nopNotifier) NotifyPlayer(*Player, Notification) {}
func (nopNotifier) NotifyTable([]*Player, Notification) {}
