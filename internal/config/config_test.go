package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinflip-ladder-backend/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ENV", "PORT", "LOG_LEVEL", "SERVER_SEED", "SESSION_TTL",
		"RATE_LIMIT_BACKEND", "RATE_LIMIT_WINDOW_MS", "RATE_LIMIT_MAX",
		"RATE_LIMIT_SWEEP_INTERVAL", "REDIS_DB", "NATS_URL", "NATS_SUBJECT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.DefaultServerSeed, cfg.ServerSeed)
	assert.True(t, cfg.UsesDefaultSeed())
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "memory", cfg.RateLimitBackend)
	assert.Equal(t, time.Second, cfg.RateLimitWindow)
	assert.Equal(t, 8, cfg.RateLimitMax)
	assert.Empty(t, cfg.NATSURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SERVER_SEED", "9f1c2e")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "2000")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("SESSION_TTL", "90s")
	t.Setenv("NATS_URL", "nats://127.0.0.1:4222")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.False(t, cfg.UsesDefaultSeed())
	assert.Equal(t, 2*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, 5, cfg.RateLimitMax)
	assert.Equal(t, 90*time.Second, cfg.SessionTTL)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATSURL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("non numeric limit", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_MAX", "lots")
		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("zero limit", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_MAX", "0")
		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_BACKEND", "memcached")
		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("unknown env", func(t *testing.T) {
		t.Setenv("ENV", "staging")
		_, err := config.Load()
		assert.Error(t, err)
	})
}
