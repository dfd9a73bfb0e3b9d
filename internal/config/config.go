package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultServerSeed is used when SERVER_SEED is unset. It is public and must
// be overridden in production.
const DefaultServerSeed = "super_secret_server_seed_change_me"

var validate = validator.New()

type Config struct {
	Env      string `validate:"required,oneof=development production"`
	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"oneof=debug info warn error"`

	ServerSeed string        `validate:"required"`
	SessionTTL time.Duration `validate:"gt=0"`

	RateLimitBackend       string        `validate:"oneof=memory redis"`
	RateLimitWindow        time.Duration `validate:"gt=0"`
	RateLimitMax           int           `validate:"gt=0"`
	RateLimitSweepInterval time.Duration `validate:"gt=0"`

	RedisURL  string `validate:"required_if=RateLimitBackend redis"`
	RedisPass string
	RedisDB   int `validate:"gte=0"`

	NATSURL     string `validate:"omitempty,url"`
	NATSSubject string `validate:"required"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:         getEnv("ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		ServerSeed:  getEnv("SERVER_SEED", DefaultServerSeed),
		RedisURL:    getEnv("REDIS_URL", "localhost:6379"),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		NATSURL:     os.Getenv("NATS_URL"),
		NATSSubject: getEnv("NATS_SUBJECT", "coinflip.events"),

		RateLimitBackend: getEnv("RATE_LIMIT_BACKEND", "memory"),
	}

	var err error
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimitSweepInterval, err = getDuration("RATE_LIMIT_SWEEP_INTERVAL", time.Minute); err != nil {
		return nil, err
	}

	windowMs, err := getInt("RATE_LIMIT_WINDOW_MS", 1000)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitWindow = time.Duration(windowMs) * time.Millisecond

	if cfg.RateLimitMax, err = getInt("RATE_LIMIT_MAX", 8); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// UsesDefaultSeed reports whether the insecure placeholder seed is active.
func (c *Config) UsesDefaultSeed() bool {
	return c.ServerSeed == DefaultServerSeed
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
