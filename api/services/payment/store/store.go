package store

import "context"

// Store persists the per-identity paid flag. An absent record is
// equivalent to paid=false; the flag is only ever set true and records
// are never deleted, so duplicate writes commute to the same state.
type Store interface {
	SetPaid(ctx context.Context, identity string) error
	IsPaid(ctx context.Context, identity string) (bool, error)
}
