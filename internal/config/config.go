// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the trips service.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// AMQPURL is the RabbitMQ connection string. Required.
	AMQPURL string

	// AuthToken is the static bearer token protecting the /trips routes. Required.
	AuthToken string

	// GeocodingAPIURL is the base URL of the reverse-geocoding API. Required.
	GeocodingAPIURL string

	// GeocodingAPIKey is the access key for the reverse-geocoding API. Required.
	GeocodingAPIKey string

	// EnrichmentMaxAttempts bounds delivery attempts per enrichment trigger
	// before it is dead-lettered. Defaults to 3.
	EnrichmentMaxAttempts int

	// ReconcileInterval is how often the reconciliation sweep re-publishes
	// triggers for unenriched trips. 0 (the default) disables the sweep.
	ReconcileInterval time.Duration

	// ReconcileMinAge is how old an unenriched trip must be before the sweep
	// picks it up. Defaults to 1h.
	ReconcileMinAge time.Duration

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	var missing []string
	required := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg.DatabaseURL = required("DATABASE_URL")
	cfg.AMQPURL = required("AMQP_URL")
	cfg.AuthToken = required("AUTH_TOKEN")
	cfg.GeocodingAPIURL = required("GEOCODING_API_URL")
	cfg.GeocodingAPIKey = required("GEOCODING_API_KEY")

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.EnrichmentMaxAttempts, err = getEnvInt("ENRICHMENT_MAX_ATTEMPTS", 3); err != nil {
		return Config{}, err
	}
	if cfg.EnrichmentMaxAttempts < 1 {
		return Config{}, fmt.Errorf("ENRICHMENT_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.ReconcileInterval, err = getEnvDuration("RECONCILE_INTERVAL", 0); err != nil {
		return Config{}, err
	}
	if cfg.ReconcileMinAge, err = getEnvDuration("RECONCILE_MIN_AGE", time.Hour); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt parses an integer environment variable with a fallback.
func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

// getEnvDuration parses a duration environment variable (e.g. "5m") with a fallback.
func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
