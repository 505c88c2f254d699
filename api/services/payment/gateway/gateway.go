package gateway

import (
	"context"

	stripe "github.com/stripe/stripe-go/v82"
)

// PaymentGateway abstracts Stripe SDK operations needed by the app layer.
// Methods return values (not pointers) to respect the project's preference
// to avoid pointer types in public interfaces.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, email string) (stripe.CheckoutSession, error)
	ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error)
}
