// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every knob the server reads at startup.
type Config struct {
	Addr        string
	BaseURL     string
	DatabaseURL string
	RedisURL    string

	JWTPrivateKeyFile string
	Issuer            string
	Audience          string

	PowPrefix    string
	ChallengeTTL time.Duration
	SessionTTL   time.Duration

	SentryDSN string
	AppEnv    string
}

// Load reads the configuration. DATABASE_URL is the only required
// setting; everything else has a workable default for local runs.
func Load() (Config, error) {
	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return Config{}, err
	}

	return Config{
		Addr:              envOrDefault("ADDR", ":8080"),
		BaseURL:           envOrDefault("BASE_URL", "https://shrtl.in"),
		DatabaseURL:       databaseURL,
		RedisURL:          os.Getenv("REDIS_URL"),
		JWTPrivateKeyFile: os.Getenv("JWT_PRIVATE_KEY_FILE"),
		Issuer:            envOrDefault("ISSUER", "shrtl.in"),
		Audience:          envOrDefault("AUDIENCE", "in.shrtl.app"),
		PowPrefix:         envOrDefault("POW_PREFIX", "0000"),
		ChallengeTTL:      envSecondsOrDefault("CHALLENGE_TTL_SECONDS", 60),
		SessionTTL:        envHoursOrDefault("SESSION_TTL_HOURS", 24),
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		AppEnv:            envOrDefault("APP_ENV", "development"),
	}, nil
}

func mustEnv(name string) (string, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return "", fmt.Errorf("missing required env: %s", name)
	}
	return value, nil
}

func envOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envIntOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envSecondsOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * time.Second
}

func envHoursOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * time.Hour
}
