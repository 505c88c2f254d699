package fbauth

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"

	"github.com/lolfundamentals/members-api/api/services/identity"
)

// verifier is the Firebase Auth-backed implementation of identity.Verifier.
type verifier struct{ client *auth.Client }

// New returns an identity.Verifier backed by the Firebase Admin SDK.
func New(client *auth.Client) identity.Verifier { return verifier{client: client} }

func (v verifier) Verify(ctx context.Context, token string) (identity.Identity, error) {
	if token == "" {
		return identity.Identity{}, fmt.Errorf("%w: no token provided", identity.ErrUnauthorized)
	}
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("%w: %v", identity.ErrUnauthorized, err)
	}
	return identityFromToken(decoded)
}

// identityFromToken maps a verified ID token to the stable identity. The
// email claim is the correlation key for payment state, so a token
// without one cannot be used.
func identityFromToken(tok *auth.Token) (identity.Identity, error) {
	email, _ := tok.Claims["email"].(string)
	if email == "" {
		return identity.Identity{}, fmt.Errorf("%w: token carries no email claim", identity.ErrUnauthorized)
	}
	return identity.Identity{UID: tok.UID, Email: email}, nil
}
