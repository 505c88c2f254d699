package router

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/lolfundamentals/members-api/api/services/identity"
	"github.com/lolfundamentals/members-api/api/services/payment/app"
)

// maxWebhookBody bounds webhook payload reads. Stripe events are small in
// practice; the cap only guards against unbounded bodies and overflow is
// rejected explicitly rather than truncated, since signature verification
// needs the full byte sequence.
const maxWebhookBody = int64(4 << 20)

type handlers struct {
	svc            app.Service
	verifier       identity.Verifier
	membersHubFile string
}

func (h handlers) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Backend is running"))
}

func (h handlers) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	redirect, err := h.svc.CreateCheckoutSession(r.Context(), body.Email)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, redirect)
}

// stripeWebhook hands the raw, unparsed body to the reconciler; signature
// verification needs the exact byte sequence as sent. Unprocessable but
// authentic events are acknowledged with 2xx so Stripe does not retry them.
func (h handlers) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "failed to read request body", http.StatusInternalServerError)
		return
	}

	err = h.svc.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	switch {
	case err == nil:
		_, _ = w.Write([]byte("Received"))
	case errors.Is(err, app.ErrInvalidSignature):
		http.Error(w, "webhook signature verification failed", http.StatusBadRequest)
	case errors.Is(err, app.ErrBadEvent):
		slog.Warn("acknowledging unprocessable webhook event", "err", err)
		_, _ = w.Write([]byte("Received"))
	default:
		slog.Error("webhook processing failed", "err", err)
		http.Error(w, "error processing webhook", http.StatusInternalServerError)
	}
}

func (h handlers) checkPaid(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	status, err := h.svc.CheckAccess(r.Context(), ident.Email)
	if err != nil {
		slog.Error("failed to fetch payment status", "identity", ident.Email, "err", err)
		http.Error(w, "failed to fetch payment status", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h handlers) membersHub(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if err := h.svc.RequireAccess(r.Context(), ident.Email); err != nil {
		if errors.Is(err, app.ErrForbidden) {
			http.Error(w, "Access denied: paid membership required", http.StatusForbidden)
			return
		}
		slog.Error("failed to check membership", "identity", ident.Email, "err", err)
		http.Error(w, "error loading members hub", http.StatusInternalServerError)
		return
	}
	http.ServeFile(w, r, h.membersHubFile)
}

// authenticate resolves the bearer token to an identity or writes a 401.
func (h handlers) authenticate(w http.ResponseWriter, r *http.Request) (identity.Identity, bool) {
	token := TokenFromRequest(r)
	if token == "" {
		http.Error(w, "Unauthorized: no token provided", http.StatusUnauthorized)
		return identity.Identity{}, false
	}
	ident, err := h.verifier.Verify(r.Context(), token)
	if err != nil {
		slog.Warn("token verification failed", "err", err)
		http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
		return identity.Identity{}, false
	}
	return ident, true
}

// TokenFromRequest extracts the bearer token from the token query parameter
// or the Authorization header, in that order.
func TokenFromRequest(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	const prefix = "Bearer "
	authz := r.Header.Get("Authorization")
	if len(authz) > len(prefix) && authz[:len(prefix)] == prefix {
		return authz[len(prefix):]
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

// writeAppError maps app-layer sentinel errors to HTTP statuses.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, app.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		slog.Error("request failed", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
