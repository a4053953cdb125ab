// Package config loads environment-driven settings that sit beneath the
// CLI flags.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Upstream API
	BaseURL   string
	UserAgent string

	// HTTP
	Timeout time.Duration

	// Rate limiting: one token per RatePeriod, bursting up to RateBurst.
	RatePeriod time.Duration
	RateBurst  int
}

func Load() Config {
	cfg := Config{
		BaseURL:   envOr("CODEGRAB_BASE_URL", "https://codes.iccsafe.org/api/"),
		UserAgent: envOr("CODEGRAB_USER_AGENT", "codegrab/1.0"),

		Timeout: envDuration("CODEGRAB_HTTP_TIMEOUT", 30*time.Second),

		RatePeriod: envDuration("CODEGRAB_RATE_PERIOD", 1*time.Second),
		RateBurst:  envInt("CODEGRAB_RATE_BURST", 5),
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RatePeriod <= 0 {
		cfg.RatePeriod = 1 * time.Second
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 1
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
