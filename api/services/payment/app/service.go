package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	stripe "github.com/stripe/stripe-go/v82"

	gw "github.com/lolfundamentals/members-api/api/services/payment/gateway"
	"github.com/lolfundamentals/members-api/api/services/payment/store"
)

// Service defines the business operations for the payment domain:
// checkout session initiation, webhook reconciliation, and the access gate.
type Service interface {
	CreateCheckoutSession(ctx context.Context, email string) (CheckoutRedirect, error)
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
	CheckAccess(ctx context.Context, identity string) (AccessStatus, error)
	RequireAccess(ctx context.Context, identity string) error
}

// serviceImpl is a concrete implementation.
type serviceImpl struct {
	gw    gw.PaymentGateway
	store store.Store
}

func NewService(g gw.PaymentGateway, st store.Store) Service {
	return serviceImpl{gw: g, store: st}
}

// CreateCheckoutSession requests a hosted payment session for the identity.
// No local state changes; completion is reported later via webhook.
func (s serviceImpl) CreateCheckoutSession(ctx context.Context, email string) (CheckoutRedirect, error) {
	if email == "" {
		return CheckoutRedirect{}, fmt.Errorf("%w: email is required", ErrInvalidArgument)
	}
	sess, err := s.gw.CreateCheckoutSession(ctx, email)
	if err != nil {
		return CheckoutRedirect{}, fmt.Errorf("%w: error creating checkout session: %v", ErrGateway, err)
	}
	return CheckoutRedirect{URL: sess.URL}, nil
}

// HandleWebhook verifies and applies a payment-processor event. Signature
// verification happens before any store access; only checkout.session.completed
// mutates state, and the upsert is idempotent under duplicate delivery.
func (s serviceImpl) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.gw.ConstructEvent(payload, sigHeader)
	if err != nil {
		slog.Error("webhook signature verification failed", "err", err)
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		slog.Info("ignoring webhook event", "type", event.Type)
		return nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("%w: error unmarshaling into CheckoutSession: %v", ErrBadEvent, err)
	}
	if session.CustomerEmail == "" {
		return fmt.Errorf("%w: customer email not found in CheckoutSession", ErrBadEvent)
	}

	if err := s.store.SetPaid(ctx, session.CustomerEmail); err != nil {
		return fmt.Errorf("%w: error marking %s as paid: %v", ErrStore, session.CustomerEmail, err)
	}
	slog.Info("user marked as paid", "identity", session.CustomerEmail)
	return nil
}

// CheckAccess reads the paid flag for the identity. An absent record
// means paid=false.
func (s serviceImpl) CheckAccess(ctx context.Context, identity string) (AccessStatus, error) {
	paid, err := s.store.IsPaid(ctx, identity)
	if err != nil {
		return AccessStatus{}, fmt.Errorf("%w: error reading paid status: %v", ErrStore, err)
	}
	return AccessStatus{Paid: paid}, nil
}

// RequireAccess is the strict variant used to gate the members hub.
func (s serviceImpl) RequireAccess(ctx context.Context, identity string) error {
	status, err := s.CheckAccess(ctx, identity)
	if err != nil {
		return err
	}
	if !status.Paid {
		return fmt.Errorf("%w: paid membership required for %s", ErrForbidden, identity)
	}
	return nil
}
