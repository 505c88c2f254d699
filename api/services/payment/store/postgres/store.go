package pgstore

import (
	"context"
	"database/sql"
	"errors"
)

// Store is the Postgres-backed paid-status store. It satisfies
// store.Store and additionally exposes EnsureSchema for bootstrap.
type Store struct{ db *sql.DB }

// New returns a Store using the given database handle.
func New(db *sql.DB) *Store { return &Store{db: db} }

// EnsureSchema creates the paid_user table if it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS paid_user (
			email      TEXT PRIMARY KEY,
			paid       BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

// SetPaid upserts the paid flag for the identity. Re-applying the same
// write leaves the row unchanged.
func (s *Store) SetPaid(ctx context.Context, identity string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO paid_user (email, paid) VALUES ($1, TRUE)
		ON CONFLICT (email) DO UPDATE SET paid = TRUE, updated_at = NOW()`,
		identity)
	return err
}

func (s *Store) IsPaid(ctx context.Context, identity string) (bool, error) {
	var paid bool
	err := s.db.QueryRowContext(ctx,
		`SELECT paid FROM paid_user WHERE email = $1`, identity).Scan(&paid)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return paid, nil
}
