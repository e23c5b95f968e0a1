package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database/sql drivers.
const (
	SQLite   = "sqlite3"
	Postgres = "postgres"
)

// Database is a database/sql pool that speaks both the sqlite3 and the
// postgres dialect. Queries are written with ? placeholders.
type Database struct {
	db     *sql.DB
	driver string
}

// Open connects to the database and creates the schema if needed.
func Open(ctx context.Context, driver, dsn string) (*Database, error) {
	switch driver {
	case SQLite:
		if dir := filepath.Dir(dsn); dir != "." && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("error creating database directory: %w", err)
			}
		}
	case Postgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	if driver == SQLite {
		// One writer at a time; sqlite serializes writes anyway.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{db: db, driver: driver}
	if err := d.initTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// initTables creates the users and game_results tables if they don't exist.
func (d *Database) initTables(ctx context.Context) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if d.driver == Postgres {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	_, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL DEFAULT '',
			balance BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating users table: %w", err)
	}

	_, err = d.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS game_results (
			id %s,
			user_id BIGINT NOT NULL REFERENCES users (id),
			table_id TEXT NOT NULL DEFAULT '',
			ended_at TIMESTAMP NOT NULL,
			place INTEGER NOT NULL,
			points INTEGER NOT NULL,
			balance_changed BIGINT NOT NULL DEFAULT 0
		)
	`, serial))
	if err != nil {
		return fmt.Errorf("error creating game_results table: %w", err)
	}

	_, err = d.db.ExecContext(ctx,
		"CREATE INDEX IF NOT EXISTS game_results_user_id ON game_results (user_id)")
	if err != nil {
		return fmt.Errorf("error creating game_results index: %w", err)
	}
	return nil
}

// Driver returns the database/sql driver name.
func (d *Database) Driver() string {
	return d.driver
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// Rebind rewrites ? placeholders into the driver's dialect.
func (d *Database) Rebind(query string) string {
	if d.driver != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (d *Database) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.db.ExecContext(ctx, d.Rebind(query), args...)
}

func (d *Database) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, d.Rebind(query), args...)
}

func (d *Database) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, d.Rebind(query), args...)
}

// Tx is a transaction that rebinds like Database.
type Tx struct {
	tx *sql.Tx
	d  *Database
}

// WithTx runs fn in a transaction, committing when fn returns nil.
func (d *Database) WithTx(ctx context.Context, fn func(*Tx) error) error {
	sqlTx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&Tx{tx: sqlTx, d: d}); err != nil {
		sqlTx.Rollback()
		return err
	}
	return sqlTx.Commit()
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.d.Rebind(query), args...)
}
