package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/calvinwijaya/hearts-be/internal/db"
)

// DatabaseStore keeps users in a SQL database
type DatabaseStore struct {
	db *db.Database
}

// NewDatabaseStore creates a new database store
func NewDatabaseStore(database *db.Database) *DatabaseStore {
	return &DatabaseStore{
		db: database,
	}
}

func (s *DatabaseStore) GetOrCreate(ctx context.Context, id Identity) (*User, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, display_name, balance, created_at)
		VALUES (?, ?, ?, 0, ?)
		ON CONFLICT (id) DO UPDATE
		SET username = excluded.username, display_name = excluded.display_name
	`, id.ID, id.Username, id.DisplayName, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("error saving user %d: %w", id.ID, err)
	}
	return s.Get(ctx, id.ID)
}

func (s *DatabaseStore) Get(ctx context.Context, id int64) (*User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, display_name, balance, created_at FROM users WHERE id = ?", id,
	).Scan(&u.ID, &u.Username, &u.DisplayName, &u.Balance, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error loading user %d: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT table_id, ended_at, place, points, balance_changed FROM game_results
		WHERE user_id = ? ORDER BY ended_at, id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("error loading history of user %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var res GameResult
		if err := rows.Scan(&res.TableID, &res.EndedAt, &res.Place, &res.Points, &res.BalanceChanged); err != nil {
			return nil, err
		}
		u.History = append(u.History, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *DatabaseStore) AppendResult(ctx context.Context, id int64, res GameResult) error {
	return s.db.WithTx(ctx, func(tx *db.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE users SET balance = balance + ? WHERE id = ?", res.BalanceChanged, id)
		if err != nil {
			return fmt.Errorf("error updating balance of user %d: %w", id, err)
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO game_results (user_id, table_id, ended_at, place, points, balance_changed)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, res.TableID, res.EndedAt.UTC(), res.Place, res.Points, res.BalanceChanged)
		if err != nil {
			return fmt.Errorf("error saving result of user %d: %w", id, err)
		}
		return nil
	})
}

func (s *DatabaseStore) Close(context.Context) error {
	return s.db.Close()
}
