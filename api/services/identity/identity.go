package identity

import (
	"context"
	"errors"
)

// ErrUnauthorized indicates a missing, malformed, expired, or otherwise
// unverifiable credential.
var ErrUnauthorized = errors.New("unauthorized")

// Identity is the stable user identity resolved from a bearer token.
// Email is the correlation key for all payment state; no internal user
// table exists.
type Identity struct {
	UID   string
	Email string
}

// Verifier validates an opaque bearer credential against the identity
// provider and resolves it to an Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}
