// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// JWTSecret signs and verifies bearer tokens (HS256). Required.
	JWTSecret []byte

	// InviteTTL and InviteMaxUses are applied when an organizer creates an
	// invite without overriding them. Default 24h and 10.
	InviteTTL     time.Duration
	InviteMaxUses int

	// ClaimTTL is the default lifetime of a placeholder claim code. Default 24h.
	ClaimTTL time.Duration

	// CodeLength is the number of characters in generated codes. Default 8.
	CodeLength int

	// MaxBodyBytes caps request bodies. Default 1 MiB.
	MaxBodyBytes int64

	// MigrateOnStart runs the embedded goose migrations before serving.
	MigrateOnStart bool
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is loaded first if present; real
// environment variables win over it.
// Returns an error listing every required variable that is not set and every
// value that does not parse.
func Load() (Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	var missing []string
	var invalid []error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if secret := os.Getenv("JWT_SECRET"); secret == "" {
		missing = append(missing, "JWT_SECRET")
	} else {
		cfg.JWTSecret = []byte(secret)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		invalid = append(invalid, fmt.Errorf("LOG_LEVEL: unknown level %q", cfg.LogLevel))
	}

	cfg.InviteTTL = getDuration("INVITE_TTL", 24*time.Hour, &invalid)
	cfg.InviteMaxUses = getInt("INVITE_MAX_USES", 10, &invalid)
	cfg.ClaimTTL = getDuration("CLAIM_TTL", 24*time.Hour, &invalid)
	cfg.CodeLength = getInt("CODE_LENGTH", 8, &invalid)
	cfg.MaxBodyBytes = int64(getInt("MAX_BODY_BYTES", 1<<20, &invalid))
	cfg.MigrateOnStart = getBool("MIGRATE_ON_START", false, &invalid)

	if len(missing) > 0 {
		invalid = append([]error{fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))}, invalid...)
	}
	if len(invalid) > 0 {
		return Config{}, errors.Join(invalid...)
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

// getDuration parses key as a Go duration ("90m", "24h"). It must be positive.
func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: want a positive duration, got %q", key, v))
		return fallback
	}
	return d
}

// getInt parses key as a positive integer.
func getInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: want a positive integer, got %q", key, v))
		return fallback
	}
	return n
}

func getBool(key string, fallback bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: want a boolean, got %q", key, v))
		return fallback
	}
	return b
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
