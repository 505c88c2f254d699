package app

import "errors"

// Typed errors for the payment app layer. These enable HTTP mapping without
// relying on SDK-specific error types at the transport layer.
var (
	// ErrInvalidArgument indicates a required input is missing or empty.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidSignature indicates the webhook signature could not be verified.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrBadEvent indicates an authentic event payload is missing required fields.
	// Such events are acknowledged rather than retried.
	ErrBadEvent = errors.New("bad event")
	// ErrForbidden indicates an authenticated identity without a paid flag.
	ErrForbidden = errors.New("forbidden")
	// ErrStore indicates a paid-status store failure.
	ErrStore = errors.New("store error")
	// ErrGateway indicates a failure from the Stripe gateway / API calls.
	ErrGateway = errors.New("gateway error")
)
