package config

import (
	"os"
	"strconv"
)

// Config contains configuration for the timeline tools
type Config struct {
	FallbackBPM int    // tempo used when the source has no use_bpm pragma
	SentryDSN   string // Sentry DSN (optional)
	Environment string // Sentry environment tag (optional)
}

// FromEnv builds a Config from environment variables. Callers that
// want .env support load it first (godotenv), as the cmd tools do.
func FromEnv() *Config {
	cfg := &Config{
		SentryDSN:   os.Getenv("SENTRY_DSN"),
		Environment: os.Getenv("SENTRY_ENVIRONMENT"),
	}
	if raw := os.Getenv("TIMELINE_FALLBACK_BPM"); raw != "" {
		if bpm, err := strconv.Atoi(raw); err == nil && bpm > 0 {
			cfg.FallbackBPM = bpm
		}
	}
	return cfg
}
