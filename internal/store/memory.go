package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of user storage
type MemoryStore struct {
	users map[int64]*User
	mu    sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[int64]*User),
	}
}

func (s *MemoryStore) GetOrCreate(_ context.Context, id Identity) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[id.ID]
	if !exists {
		u = &User{ID: id.ID, CreatedAt: time.Now().UTC()}
		s.users[id.ID] = u
	}
	u.Username = id.Username
	u.DisplayName = id.DisplayName

	return u.clone(), nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	return u.clone(), nil
}

func (s *MemoryStore) AppendResult(_ context.Context, id int64, res GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[id]
	if !exists {
		return ErrNotFound
	}
	u.History = append(u.History, res)
	u.Balance += res.BalanceChanged
	return nil
}

func (s *MemoryStore) Close(context.Context) error {
	return nil
}

func (u *User) clone() *User {
	c := *u
	c.History = append([]GameResult(nil), u.History...)
	return &c
}
