package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/lolfundamentals/members-api/api/config"
	"github.com/lolfundamentals/members-api/api/database"
	"github.com/lolfundamentals/members-api/api/services/identity"
	fbauth "github.com/lolfundamentals/members-api/api/services/identity/firebase"
	"github.com/lolfundamentals/members-api/api/services/payment/app"
	stripegw "github.com/lolfundamentals/members-api/api/services/payment/gateway/stripe"
	"github.com/lolfundamentals/members-api/api/services/payment/store"
	fsstore "github.com/lolfundamentals/members-api/api/services/payment/store/firestore"
	pgstore "github.com/lolfundamentals/members-api/api/services/payment/store/postgres"
)

// App holds the wired application dependencies. Everything is constructed
// once at process start and passed down explicitly; there are no hidden
// package-level singletons.
type App struct {
	Config   *config.Config
	Payments app.Service
	Verifier identity.Verifier

	closers []func() error
}

// Init loads config, constructs the external clients, and wires the
// payment service and identity verifier.
func Init(ctx context.Context) (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return InitWithConfig(ctx, cfg)
}

// InitWithConfig wires the application from an already loaded config.
func InitWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	var opts []option.ClientOption
	if cfg.GoogleCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
	}
	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	authClient, err := fbApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth client: %w", err)
	}
	a.Verifier = fbauth.New(authClient)

	st, err := a.initStore(ctx, fbApp)
	if err != nil {
		return nil, err
	}

	stripegw.SetKey(cfg.StripeSecretKey)
	gateway := stripegw.New(stripegw.Config{
		PriceID:       cfg.StripePriceID,
		SuccessURL:    cfg.CheckoutSuccessURL,
		CancelURL:     cfg.CheckoutCancelURL,
		WebhookSecret: cfg.StripeWebhookSecret,
	})

	a.Payments = app.NewService(gateway, st)
	return a, nil
}

// initStore picks the paid-status store backend: Postgres when a database
// URL is configured, Firestore otherwise.
func (a *App) initStore(ctx context.Context, fbApp *firebase.App) (store.Store, error) {
	if a.Config.DatabaseURL != "" {
		db, err := database.Connect(a.Config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		pg := pgstore.New(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
		slog.Info("paid-status store: postgres")
		return pg, nil
	}

	fsClient, err := fbApp.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firestore client: %w", err)
	}
	a.closers = append(a.closers, fsClient.Close)
	slog.Info("paid-status store: firestore", "collection", config.PaidUsersCollection)
	return fsstore.New(fsClient, config.PaidUsersCollection), nil
}

// Close releases the external clients owned by the app.
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			slog.Warn("error closing dependency", "err", err)
		}
	}
}
