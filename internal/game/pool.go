package game

import (
	"errors"
	"sync"

	"github.com/calvinwijaya/hearts-be/internal/log"
)

// Pool keeps the single open table and the player directory: one Player per
// identity and the table each player is bound to.
type Pool struct {
	mu   sync.Mutex
	open *Table
	opts Options

	dirMu   sync.RWMutex
	players map[int64]*Player
	tables  map[int64]*Table
}

// NewPool creates a pool whose tables share opts. The pool installs itself
// as the tables' Directory.
func NewPool(opts Options) *Pool {
	p := &Pool{
		players: make(map[int64]*Player),
		tables:  make(map[int64]*Table),
	}
	opts.Directory = p
	p.opts = opts
	p.open = NewTable(opts)
	return p
}

// Player returns the player for the identity, creating it on first use.
func (p *Pool) Player(id int64, displayName string) *Player {
	p.dirMu.Lock()
	defer p.dirMu.Unlock()

	if pl, ok := p.players[id]; ok {
		return pl
	}
	pl := NewPlayer(id, displayName)
	p.players[id] = pl
	return pl
}

// Lookup returns a known player without creating one.
func (p *Pool) Lookup(id int64) (*Player, bool) {
	p.dirMu.RLock()
	defer p.dirMu.RUnlock()

	pl, ok := p.players[id]
	return pl, ok
}

// Forget evicts an identity that is not bound to any table.
func (p *Pool) Forget(id int64) bool {
	p.dirMu.Lock()
	defer p.dirMu.Unlock()

	if _, bound := p.tables[id]; bound {
		return false
	}
	delete(p.players, id)
	return true
}

// Admit seats the player. A player already bound to a table goes back to it;
// anyone else joins the open table, which is replaced once it has started.
func (p *Pool) Admit(pl *Player) (*Table, error) {
	if t, ok := p.TableOf(pl.ID); ok {
		if t.Started() {
			if err := t.Rejoin(pl); err == nil {
				return t, nil
			}
			p.Unbind(pl.ID, t)
		} else if err := t.SendState(pl); err == nil {
			return t, nil
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for attempt := 0; attempt < 2; attempt++ {
		if p.open.Started() {
			p.open = NewTable(p.opts)
		}
		err := p.open.Join(pl)
		if errors.Is(err, ErrAlreadyStarted) || errors.Is(err, ErrTableClosed) {
			// Started by a vote between the check and the join.
			continue
		}
		if err != nil {
			return nil, err
		}
		t := p.open
		if t.Started() {
			log.Info("pool: table %s started, opening a new lobby", t.ID)
			p.open = NewTable(p.opts)
		}
		return t, nil
	}
	return nil, ErrAlreadyStarted
}

// Release drops the player's binding after an explicit leave. A player who
// walks away from a started game keeps an auto-played seat there that no
// longer hears from the table, and the identity gets a fresh Player for its
// next table.
func (p *Pool) Release(pl *Player) {
	t, ok := p.TableOf(pl.ID)
	if !ok {
		return
	}
	p.Unbind(pl.ID, t)
	if !t.Started() {
		return
	}
	t.Depart(pl)

	p.dirMu.Lock()
	defer p.dirMu.Unlock()
	if p.players[pl.ID] == pl {
		p.players[pl.ID] = NewPlayer(pl.ID, pl.DisplayName)
	}
}

// Open returns the table currently accepting joins.
func (p *Pool) Open() *Table {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// TableOf returns the table the player is bound to.
func (p *Pool) TableOf(id int64) (*Table, bool) {
	p.dirMu.RLock()
	defer p.dirMu.RUnlock()

	t, ok := p.tables[id]
	return t, ok
}

func (p *Pool) Bind(playerID int64, t *Table) {
	p.dirMu.Lock()
	defer p.dirMu.Unlock()
	p.tables[playerID] = t
}

// Unbind removes the binding if it still points at t.
func (p *Pool) Unbind(playerID int64, t *Table) {
	p.dirMu.Lock()
	defer p.dirMu.Unlock()
	if p.tables[playerID] == t {
		delete(p.tables, playerID)
	}
}

// Vacate unbinds a player of a closed table. Nothing else holds an offline
// player, so the identity is forgotten too.
func (p *Pool) Vacate(playerID int64, t *Table) {
	p.dirMu.Lock()
	defer p.dirMu.Unlock()
	if p.tables[playerID] != t {
		return
	}
	delete(p.tables, playerID)
	if p.opts.Connected != nil && !p.opts.Connected(playerID) {
		delete(p.players, playerID)
		log.Debug("pool: forgot offline player %d of closed table %s", playerID, t.ID)
	}
}
