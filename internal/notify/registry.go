package notify

import "sync"

// Handle is a live transport a player's events are written to. Handles are
// compared by identity, so implementations should be pointer types.
type Handle interface {
	Send(msg []byte) error
	Close() error
}

// Registry maps player ids to their current connection. It holds no game
// state and is safe for concurrent use by independent connections.
type Registry struct {
	mu      sync.RWMutex
	handles map[int64]Handle
	owners  map[Handle]int64
}

func NewRegistry() *Registry {
	return &Registry{
		handles: make(map[int64]Handle),
		owners:  make(map[Handle]int64),
	}
}

// Register binds h to the player and returns the handle it displaced, if
// any. The caller decides whether to close the old one.
func (r *Registry) Register(playerID int64, h Handle) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.handles[playerID]
	if old != nil {
		delete(r.owners, old)
	}
	r.handles[playerID] = h
	r.owners[h] = playerID
	return old
}

// Unregister drops whatever handle the player has.
func (r *Registry) Unregister(playerID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.handles[playerID]; ok {
		delete(r.owners, h)
		delete(r.handles, playerID)
	}
}

// UnregisterHandle drops h. It reports the player h belonged to, and false
// when h was already replaced or removed.
func (r *Registry) UnregisterHandle(h Handle) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.owners[h]
	if !ok {
		return 0, false
	}
	delete(r.owners, h)
	delete(r.handles, id)
	return id, true
}

func (r *Registry) Lookup(playerID int64) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handles[playerID]
	return h, ok
}

// Len returns the number of connected players.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
