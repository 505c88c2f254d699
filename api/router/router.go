package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/lolfundamentals/members-api/api/config"
	"github.com/lolfundamentals/members-api/api/services/identity"
	"github.com/lolfundamentals/members-api/api/services/payment/app"
)

// New returns the central HTTP router for the API. All dependencies are
// injected; the router holds no process-wide state of its own.
func New(svc app.Service, verifier identity.Verifier, cfg *config.Config) http.Handler {
	origins := strings.Split(cfg.AllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	r := chi.NewRouter()
	r.Use(Recoverer)
	r.Use(RequestLogger)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Stripe-Signature"},
		AllowCredentials: true,
	}).Handler)

	h := handlers{svc: svc, verifier: verifier, membersHubFile: cfg.MembersHubFile}

	r.Get("/", h.health)
	r.Post("/createCheckoutSession", h.createCheckoutSession)
	r.Post("/stripeWebhook", h.stripeWebhook)
	r.Get("/checkPaid", h.checkPaid)
	r.Get("/membershub", h.membersHub)

	return r
}
