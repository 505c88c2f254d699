package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceID       string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string
	FirebaseProjectID   string
	// Optional: path to a service account key file; when empty the SDK
	// falls back to application default credentials.
	GoogleCredentialsFile string
	// Optional: when set, the paid-status store uses Postgres instead of Firestore.
	DatabaseURL string
	// Comma-separated list of origins allowed by the CORS layer.
	AllowedOrigins string
	// Path to the gated members-hub page served to paid users.
	MembersHubFile string
	HTTPPort       string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{}

	// Try to load .env file from current directory and parent directories
	currentDir, _ := os.Getwd()
	for currentDir != "/" {
		// Check if .env file exists in current directory
		envPath := filepath.Join(currentDir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// Load .env file
			err = godotenv.Load(envPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load .env file: %v", err)
			}
			break
		}
		// Move up one directory
		currentDir = filepath.Dir(currentDir)
	}

	// Get required environment variables
	requiredVars := []struct {
		name     string
		envVar   string
		display  string
		required bool
	}{
		{"StripeSecretKey", "STRIPE_SECRET_KEY", "Stripe Secret Key", true},
		{"StripeWebhookSecret", "STRIPE_WEBHOOK_SECRET", "Stripe Webhook Secret", true},
		{"StripePriceID", "STRIPE_PRICE_ID", "Stripe Price ID", true},
		{"CheckoutSuccessURL", "CHECKOUT_SUCCESS_URL", "Checkout Success URL", true},
		{"CheckoutCancelURL", "CHECKOUT_CANCEL_URL", "Checkout Cancel URL", true},
		{"FirebaseProjectID", "FIREBASE_PROJECT_ID", "Firebase Project ID", true},
		{"GoogleCredentialsFile", "GOOGLE_APPLICATION_CREDENTIALS", "Google Credentials File", false},
		{"DatabaseURL", "DATABASE_URL", "Database URL", false},
		{"AllowedOrigins", "ALLOWED_ORIGINS", "Allowed CORS Origins", false},
		{"MembersHubFile", "MEMBERS_HUB_FILE", "Members Hub File", false},
		{"HTTPPort", "PORT", "HTTP Port", false},
	}

	for _, v := range requiredVars {
		value := os.Getenv(v.envVar)
		if v.required && value == "" {
			return nil, fmt.Errorf("missing required environment variable: %s", v.display)
		}
		configField := reflect.ValueOf(config).Elem().FieldByName(v.name)
		configField.SetString(value)
	}

	// Defaults
	if config.HTTPPort == "" {
		config.HTTPPort = "8080"
	}
	if config.AllowedOrigins == "" {
		config.AllowedOrigins = "http://localhost:5000"
	}
	if config.MembersHubFile == "" {
		config.MembersHubFile = "web/membershub.html"
	}

	return config, nil
}
