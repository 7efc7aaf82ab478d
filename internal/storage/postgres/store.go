package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists the connection-intent flag in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the session_state table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS session_state (
			name       TEXT PRIMARY KEY,
			connected  BOOLEAN NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

// LoadFlag returns the connected flag for a name and when it was written.
func (s *Store) LoadFlag(ctx context.Context, name string) (bool, time.Time, bool, error) {
	if name == "" {
		return false, time.Time{}, false, fmt.Errorf("state name required")
	}
	var (
		connected bool
		updatedAt time.Time
	)
	row := s.pool.QueryRow(ctx, `SELECT connected, updated_at FROM session_state WHERE name=$1`, name)
	if err := row.Scan(&connected, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, time.Time{}, false, nil
		}
		return false, time.Time{}, false, err
	}
	return connected, updatedAt, true, nil
}

// SaveFlag upserts the connected flag for a name.
func (s *Store) SaveFlag(ctx context.Context, name string, connected bool) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO session_state (name, connected, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET connected = EXCLUDED.connected, updated_at = now()
	`, name, connected)
	return err
}

// DeleteFlag removes the row for a name.
func (s *Store) DeleteFlag(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM session_state WHERE name=$1`, name)
	return err
}
