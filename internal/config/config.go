// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/laranseos/email-automation-gpt-bluefolder/internal/match"
)

// Store backend names accepted in STORE_BACKEND.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds all runtime configuration shared by both binaries.
type Config struct {
	// Language model.
	AnthropicAPIKey string
	AnthropicModel  string

	// Work-order system.
	BlueFolderToken   string
	BlueFolderBaseURL string

	// Mailbox (Gmail OAuth).
	GoogleClientID     string
	GoogleClientSecret string
	GoogleTokenFile    string

	// State persistence.
	StoreBackend string // file | postgres | redis
	StoreDir     string
	DatabaseURL  string
	RedisURL     string

	// Polling.
	PollInterval    time.Duration // responder mailbox poll
	ConfirmInterval time.Duration // confirmer assignment poll
	FetchDaysAhead  int
	Workers         int

	// Matching.
	MatchThreshold float64
	MatchWeights   match.Weights

	// Outbound mail.
	SenderSignature   string
	FallbackRecipient string

	// Blacklist.
	BlacklistEmails  []string
	BlacklistDomains []string
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}

	bfToken := os.Getenv("BLUEFOLDER_API_TOKEN")
	if bfToken == "" {
		return nil, fmt.Errorf("BLUEFOLDER_API_TOKEN is required")
	}

	backend := os.Getenv("STORE_BACKEND")
	if backend == "" {
		backend = BackendFile
	}

	cfg := &Config{
		AnthropicAPIKey:    apiKey,
		AnthropicModel:     os.Getenv("ANTHROPIC_MODEL"),
		BlueFolderToken:    bfToken,
		BlueFolderBaseURL:  os.Getenv("BLUEFOLDER_BASE_URL"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleTokenFile:    envDefault("GOOGLE_TOKEN_FILE", "token.json"),
		StoreBackend:       backend,
		StoreDir:           envDefault("STORE_DIR", "data"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		SenderSignature:    envDefault("SENDER_SIGNATURE", "Pronto Gym Services"),
		FallbackRecipient:  os.Getenv("FALLBACK_RECIPIENT"),
		BlacklistEmails:    splitList(os.Getenv("BLACKLIST_EMAILS")),
		BlacklistDomains:   splitList(os.Getenv("BLACKLIST_DOMAINS")),
	}

	switch backend {
	case BackendFile:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=postgres")
		}
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when STORE_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be file, postgres or redis, got %q", backend)
	}

	var err error
	if cfg.PollInterval, err = envDuration("POLL_INTERVAL", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.ConfirmInterval, err = envDuration("CONFIRM_INTERVAL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.FetchDaysAhead, err = envPositiveInt("FETCH_DAYS_AHEAD", 30); err != nil {
		return nil, err
	}
	if cfg.Workers, err = envPositiveInt("WORKERS", 5); err != nil {
		return nil, err
	}

	cfg.MatchThreshold = match.DefaultThreshold
	if s := os.Getenv("MATCH_THRESHOLD"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 || v > 1 {
			return nil, fmt.Errorf("MATCH_THRESHOLD must be in [0,1], got %q", s)
		}
		cfg.MatchThreshold = v
	}

	cfg.MatchWeights = match.DefaultWeights()
	if cfg.MatchWeights.Name, err = envFloat("MATCH_WEIGHT_NAME", cfg.MatchWeights.Name); err != nil {
		return nil, err
	}
	if cfg.MatchWeights.Email, err = envFloat("MATCH_WEIGHT_EMAIL", cfg.MatchWeights.Email); err != nil {
		return nil, err
	}
	if cfg.MatchWeights.Phone, err = envFloat("MATCH_WEIGHT_PHONE", cfg.MatchWeights.Phone); err != nil {
		return nil, err
	}
	if cfg.MatchWeights.Location, err = envFloat("MATCH_WEIGHT_LOCATION", cfg.MatchWeights.Location); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envPositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, s)
	}
	return v, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, s)
	}
	return v, nil
}

func envFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative number, got %q", key, s)
	}
	return v, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
