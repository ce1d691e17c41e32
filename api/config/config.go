package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds the global application configuration
var AppConfig *Config

// Config holds the application configuration
type Config struct {
	StripeSecretKey string
	// Optional: override of the Stripe API base URL (e.g., a local stripe-mock)
	StripeAPIURL string
	// Optional: when set, created sessions are recorded in Postgres
	DatabaseURL string
	// Optional: Firebase project used to verify callable ID tokens
	FirebaseProjectID    string
	FirebaseAuthRequired string
	// Optional: base URL for running remote HTTP integration tests (e.g., https://us-central1-app.cloudfunctions.net)
	IntegrationBaseURL string
	LogLevel           string
	// Server ports
	HTTPPort string
	GRPCPort string
}

// envVar maps a Config field to the environment variable that fills it.
type envVar struct {
	name     string
	envVar   string
	display  string
	required bool
}

var envVars = []envVar{
	{"StripeSecretKey", "STRIPE_SECRET_KEY", "Stripe Secret Key", true},
	{"StripeAPIURL", "STRIPE_API_URL", "Stripe API URL", false},
	{"DatabaseURL", "DATABASE_URL", "Database URL", false},
	{"FirebaseProjectID", "FIREBASE_PROJECT_ID", "Firebase Project ID", false},
	{"FirebaseAuthRequired", "FIREBASE_AUTH_REQUIRED", "Firebase Auth Required", false},
	{"IntegrationBaseURL", "INTEGRATION_BASE_URL", "Integration Base URL", false},
	{"LogLevel", "LOG_LEVEL", "Log Level", false},
	{"HTTPPort", "PORT", "HTTP Port", false},
	{"GRPCPort", "GRPC_PORT", "gRPC Port", false},
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	for _, v := range envVars {
		value := strings.TrimSpace(os.Getenv(v.envVar))
		if v.required && value == "" {
			return nil, fmt.Errorf("missing required environment variable: %s", v.display)
		}
		configField := reflect.ValueOf(config).Elem().FieldByName(v.name)
		configField.SetString(value)
	}

	if config.FirebaseAuthRequired != "" {
		if _, err := strconv.ParseBool(config.FirebaseAuthRequired); err != nil {
			return nil, fmt.Errorf("invalid FIREBASE_AUTH_REQUIRED %q: %v", config.FirebaseAuthRequired, err)
		}
	}

	// Defaults
	if config.HTTPPort == "" {
		config.HTTPPort = "8080"
	}
	if config.GRPCPort == "" {
		config.GRPCPort = "50051"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	return config, nil
}

// AuthRequired reports whether callable requests must carry a valid Firebase ID token.
func (c *Config) AuthRequired() bool {
	v, _ := strconv.ParseBool(c.FirebaseAuthRequired)
	return v
}

// loadDotEnv loads the first .env file found in the current directory or one of its parents.
// Variables already present in the environment are not overridden.
func loadDotEnv() error {
	currentDir, _ := os.Getwd()
	for currentDir != "" {
		envPath := filepath.Join(currentDir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("failed to load .env file: %v", err)
			}
			return nil
		}
		parent := filepath.Dir(currentDir)
		if parent == currentDir {
			return nil
		}
		currentDir = parent
	}
	return nil
}
