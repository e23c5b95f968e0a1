package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no user record exists for an id.
var ErrNotFound = errors.New("user not found")

// Identity is a verified claim made by a connecting client.
type Identity struct {
	ID          int64
	Username    string
	DisplayName string
}

// GameResult is one finished round as recorded in a user's history.
type GameResult struct {
	TableID        string    `json:"table_id" bson:"table_id"`
	EndedAt        time.Time `json:"ended_at" bson:"ended_at"`
	Place          int       `json:"place" bson:"place"`
	Points         int       `json:"points" bson:"points"`
	BalanceChanged int64     `json:"balance_changed" bson:"balance_changed"`
}

// User is the persistent profile of a player. Balance is in minor units and
// is only changed through AppendResult.
type User struct {
	ID          int64        `json:"id" bson:"_id"`
	Username    string       `json:"username" bson:"username"`
	DisplayName string       `json:"display_name" bson:"display_name"`
	Balance     int64        `json:"balance" bson:"balance"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
	History     []GameResult `json:"history" bson:"history"`
}

// Name is what other players see.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// UserStore defines the interface for user record storage
type UserStore interface {
	// GetOrCreate returns the user for the identity, creating it on first
	// sight and refreshing the names otherwise.
	GetOrCreate(ctx context.Context, id Identity) (*User, error)

	// Get retrieves a user by id
	Get(ctx context.Context, id int64) (*User, error)

	// AppendResult adds a result to the user's history and applies its
	// balance change.
	AppendResult(ctx context.Context, id int64, res GameResult) error

	Close(ctx context.Context) error
}
