// Package config loads process configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// tokenTTLDefault is how long issued tokens remain valid.
const tokenTTLDefault = 7 * 24 * time.Hour

// Config holds the process-wide configuration.
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string
	TokenTTL  time.Duration
}

// Load reads configuration from a .env file (if present) and the
// environment. A missing JWT_SECRET is not fatal here: token issuance and
// validation must degrade to clean 500 responses rather than crash, so the
// process starts and logs a warning instead.
func Load() *Config {
	_ = godotenv.Load()

	ttl := tokenTTLDefault
	if raw := os.Getenv("JWT_TTL_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			ttl = time.Duration(hours) * time.Hour
		}
	}

	c := &Config{
		Port:      getEnv("PORT", "8080"),
		DBPath:    getEnv("DB_PATH", "./data/roomledger.db"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  ttl,
	}

	if c.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not configured; all token operations will fail until it is set")
	}
	return c
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
