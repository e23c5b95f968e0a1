package notify

import (
	"encoding/json"

	"github.com/calvinwijaya/hearts-be/internal/game"
	"github.com/calvinwijaya/hearts-be/internal/log"
)

// Dispatcher delivers table notifications to connected players. Delivery is
// best effort: a missing or failing connection never reaches the table.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// NotifyPlayer sends n to one player.
func (d *Dispatcher) NotifyPlayer(p *game.Player, n game.Notification) {
	if p.IsBot {
		return
	}
	data, err := json.Marshal(n)
	if err != nil {
		log.Error("notify: marshal %s event: %v", n.Event, err)
		return
	}
	d.deliver(p.ID, data)
}

// NotifyTable sends n to every seated human.
func (d *Dispatcher) NotifyTable(seats []*game.Player, n game.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		log.Error("notify: marshal %s event: %v", n.Event, err)
		return
	}
	for _, p := range seats {
		if p.IsBot {
			continue
		}
		d.deliver(p.ID, data)
	}
}

// Send delivers a notification outside of any table, such as a command error.
func (d *Dispatcher) Send(playerID int64, n game.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		log.Error("notify: marshal %s event: %v", n.Event, err)
		return
	}
	d.deliver(playerID, data)
}

func (d *Dispatcher) deliver(playerID int64, data []byte) {
	h, ok := d.registry.Lookup(playerID)
	if !ok {
		return
	}
	if err := h.Send(data); err != nil {
		log.Warn("notify: dropping connection of player %d: %v", playerID, err)
		if _, removed := d.registry.UnregisterHandle(h); removed {
			h.Close()
		}
	}
}
