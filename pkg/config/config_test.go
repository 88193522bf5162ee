package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 10*time.Minute, cfg.StatsCacheTTL)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("STATS_CACHE_TTL", "90s")
	t.Setenv("PUSH_ENABLED", "false")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 90*time.Second, cfg.StatsCacheTTL)
	assert.False(t, cfg.PushEnabled)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
}
