package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	stripe "github.com/stripe/stripe-go/v82"

	"github.com/lolfundamentals/members-api/api/config"
	"github.com/lolfundamentals/members-api/api/services/identity"
	"github.com/lolfundamentals/members-api/api/services/payment/app"
)

type stubVerifier struct{ email string }

func (s stubVerifier) Verify(ctx context.Context, token string) (identity.Identity, error) {
	if token == "good" {
		return identity.Identity{UID: "u1", Email: s.email}, nil
	}
	return identity.Identity{}, identity.ErrUnauthorized
}

type stubGateway struct {
	event       stripe.Event
	eventErr    error
	url         string
	lastPayload []byte
}

func (s *stubGateway) CreateCheckoutSession(ctx context.Context, email string) (stripe.CheckoutSession, error) {
	return stripe.CheckoutSession{URL: s.url}, nil
}

func (s *stubGateway) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	s.lastPayload = payload
	if s.eventErr != nil {
		return stripe.Event{}, s.eventErr
	}
	return s.event, nil
}

type memStore struct {
	paid map[string]bool
	err  error
}

func (m *memStore) SetPaid(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.paid[id] = true
	return nil
}

func (m *memStore) IsPaid(ctx context.Context, id string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.paid[id], nil
}

func newTestRouter(g *stubGateway, st *memStore, hubFile string) http.Handler {
	cfg := &config.Config{
		AllowedOrigins: "http://localhost:5000",
		MembersHubFile: hubFile,
	}
	svc := app.NewService(g, st)
	return New(svc, stubVerifier{email: "a@b.com"}, cfg)
}

func completedSessionEvent(t *testing.T, email string) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(stripe.CheckoutSession{CustomerEmail: email})
	if err != nil {
		t.Fatalf("failed to marshal session: %v", err)
	}
	return stripe.Event{Type: stripe.EventTypeCheckoutSessionCompleted, Data: &stripe.EventData{Raw: raw}}
}

func TestHealth(t *testing.T) {
	h := newTestRouter(&stubGateway{}, &memStore{paid: map[string]bool{}}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "running")
}

func TestCreateCheckoutSession(t *testing.T) {
	h := newTestRouter(&stubGateway{url: "https://checkout.stripe.com/pay/cs_test"}, &memStore{paid: map[string]bool{}}, "")

	body, _ := json.Marshal(map[string]string{"email": "a@b.com"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/createCheckoutSession", bytes.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test", resp["url"])
}

func TestCreateCheckoutSession_EmptyEmail(t *testing.T) {
	h := newTestRouter(&stubGateway{}, &memStore{paid: map[string]bool{}}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/createCheckoutSession", bytes.NewReader([]byte(`{"email":""}`))))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCheckoutSession_BadJSON(t *testing.T) {
	h := newTestRouter(&stubGateway{}, &memStore{paid: map[string]bool{}}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/createCheckoutSession", bytes.NewReader([]byte(`not json`))))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckPaid_NoToken(t *testing.T) {
	h := newTestRouter(&stubGateway{}, &memStore{paid: map[string]bool{}}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/checkPaid", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckPaid_InvalidToken(t *testing.T) {
	h := newTestRouter(&stubGateway{}, &memStore{paid: map[string]bool{}}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/checkPaid?token=bad", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckPaid_QueryToken_Unpaid(t *testing.T) {
	h := newTestRouter(&stubGateway{}, &memStore{paid: map[string]bool{}}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/checkPaid?token=good", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"paid":false}`, rec.Body.String())
}

func TestCheckPaid_HeaderToken_Paid(t *testing.T) {
	h := newTestRouter(&stubGateway{}, &memStore{paid: map[string]bool{"a@b.com": true}}, "")

	req := httptest.NewRequest(http.MethodGet, "/checkPaid", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"paid":true}`, rec.Body.String())
}

func TestCheckPaid_StoreUnavailable(t *testing.T) {
	h := newTestRouter(&stubGateway{}, &memStore{paid: map[string]bool{}, err: errors.New("store down")}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/checkPaid?token=good", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMembersHub_Forbidden(t *testing.T) {
	h := newTestRouter(&stubGateway{}, &memStore{paid: map[string]bool{}}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/membershub?token=good", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMembersHub_PaidServesPage(t *testing.T) {
	hub := filepath.Join(t.TempDir(), "membershub.html")
	if err := os.WriteFile(hub, []byte("<h1>Members Hub</h1>"), 0o600); err != nil {
		t.Fatalf("failed to write hub file: %v", err)
	}
	h := newTestRouter(&stubGateway{}, &memStore{paid: map[string]bool{"a@b.com": true}}, hub)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/membershub?token=good", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Members Hub")
}

func TestStripeWebhook_InvalidSignature(t *testing.T) {
	st := &memStore{paid: map[string]bool{}}
	h := newTestRouter(&stubGateway{eventErr: errors.New("signature mismatch")}, st, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stripeWebhook", bytes.NewReader([]byte(`{}`))))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, st.paid)
}

func TestStripeWebhook_IgnoredEventKind(t *testing.T) {
	st := &memStore{paid: map[string]bool{}}
	g := &stubGateway{event: stripe.Event{Type: "payment_intent.payment_failed", Data: &stripe.EventData{Raw: []byte(`{}`)}}}
	h := newTestRouter(g, st, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stripeWebhook", bytes.NewReader([]byte(`{}`))))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Received", rec.Body.String())
	assert.Empty(t, st.paid)
}

func TestStripeWebhook_CompletedMarksPaid(t *testing.T) {
	st := &memStore{paid: map[string]bool{}}
	g := &stubGateway{event: completedSessionEvent(t, "a@b.com")}
	h := newTestRouter(g, st, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stripeWebhook", bytes.NewReader([]byte(`{}`))))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, st.paid["a@b.com"])
}

func TestStripeWebhook_MissingEmailAcknowledged(t *testing.T) {
	st := &memStore{paid: map[string]bool{}}
	g := &stubGateway{event: completedSessionEvent(t, "")}
	h := newTestRouter(g, st, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stripeWebhook", bytes.NewReader([]byte(`{}`))))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Received", rec.Body.String())
	assert.Empty(t, st.paid)
}

func TestStripeWebhook_LargeEventReachesVerifierIntact(t *testing.T) {
	st := &memStore{paid: map[string]bool{}}
	g := &stubGateway{event: stripe.Event{Type: "invoice.created", Data: &stripe.EventData{Raw: []byte(`{}`)}}}
	h := newTestRouter(g, st, "")

	// Larger than any single read chunk; the verifier must see every byte.
	body := bytes.Repeat([]byte("a"), 70*1024)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stripeWebhook", bytes.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Received", rec.Body.String())
	assert.Len(t, g.lastPayload, 70*1024)
	assert.Empty(t, st.paid)
}

func TestStripeWebhook_OversizedBodyRejected(t *testing.T) {
	st := &memStore{paid: map[string]bool{}}
	g := &stubGateway{event: completedSessionEvent(t, "a@b.com")}
	h := newTestRouter(g, st, "")

	body := bytes.Repeat([]byte("a"), int(4<<20)+1)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stripeWebhook", bytes.NewReader(body)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Nil(t, g.lastPayload)
	assert.Empty(t, st.paid)
}

func TestCORS_TrimsConfiguredOrigins(t *testing.T) {
	cfg := &config.Config{
		AllowedOrigins: "https://a.app, http://localhost:5000",
	}
	svc := app.NewService(&stubGateway{}, &memStore{paid: map[string]bool{}})
	h := New(svc, stubVerifier{email: "a@b.com"}, cfg)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:5000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStripeWebhook_StoreFailure(t *testing.T) {
	st := &memStore{paid: map[string]bool{}, err: errors.New("store down")}
	g := &stubGateway{event: completedSessionEvent(t, "a@b.com")}
	h := newTestRouter(g, st, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stripeWebhook", bytes.NewReader([]byte(`{}`))))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/checkPaid?token=abc", nil)
	assert.Equal(t, "abc", TokenFromRequest(req))

	req = httptest.NewRequest(http.MethodGet, "/checkPaid", nil)
	req.Header.Set("Authorization", "Bearer xyz")
	assert.Equal(t, "xyz", TokenFromRequest(req))

	// Query parameter wins when both are present.
	req = httptest.NewRequest(http.MethodGet, "/checkPaid?token=abc", nil)
	req.Header.Set("Authorization", "Bearer xyz")
	assert.Equal(t, "abc", TokenFromRequest(req))

	req = httptest.NewRequest(http.MethodGet, "/checkPaid", nil)
	req.Header.Set("Authorization", "Basic xyz")
	assert.Equal(t, "", TokenFromRequest(req))

	req = httptest.NewRequest(http.MethodGet, "/checkPaid", nil)
	assert.Equal(t, "", TokenFromRequest(req))
}
