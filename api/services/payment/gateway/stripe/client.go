package stripegw

import (
	"context"
	"net/url"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	gw "github.com/lolfundamentals/members-api/api/services/payment/gateway"
)

// SetKey configures the Stripe SDK key once during bootstrap.
func SetKey(key string) { stripe.Key = key }

// Config carries the fixed checkout parameters and the webhook secret.
type Config struct {
	PriceID       string
	SuccessURL    string
	CancelURL     string
	WebhookSecret string
}

// client is the Stripe SDK-backed implementation of the gateway.
type client struct{ cfg Config }

// New returns a PaymentGateway backed by the official Stripe SDK.
func New(cfg Config) gw.PaymentGateway { return client{cfg: cfg} }

// CreateCheckoutSession creates a single-item, fixed-price, one-time-payment
// hosted checkout session. The success URL echoes the email so the frontend
// can correlate the redirect with the identity that paid.
func (c client) CreateCheckoutSession(ctx context.Context, email string) (stripe.CheckoutSession, error) {
	sep := "?"
	if strings.Contains(c.cfg.SuccessURL, "?") {
		sep = "&"
	}
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(c.cfg.PriceID),
			Quantity: stripe.Int64(1),
		}},
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(email),
		SuccessURL:    stripe.String(c.cfg.SuccessURL + sep + "email=" + url.QueryEscape(email)),
		CancelURL:     stripe.String(c.cfg.CancelURL),
	}
	params.Context = ctx

	sessPtr, err := session.New(params)
	if err != nil {
		return stripe.CheckoutSession{}, err
	}
	if sessPtr == nil {
		return stripe.CheckoutSession{}, nil
	}
	return *sessPtr, nil
}

// ConstructEvent verifies the signature header against the raw payload and
// the pre-shared webhook secret. API version mismatches are tolerated; the
// app layer only reads fields that are stable across versions.
func (c client) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, sigHeader, c.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
