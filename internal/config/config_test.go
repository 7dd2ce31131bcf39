package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8081", cfg.HTTPPort)
	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.Equal(t, "seed", cfg.DirectorySource)
	assert.Equal(t, 8*time.Hour, cfg.AccessTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.Production())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("ACCESS_TTL", "30m")
	t.Setenv("RATE_LIMIT_PER_MIN", "10")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")

	cfg := Load()

	assert.True(t, cfg.Production())
	assert.Equal(t, "redis", cfg.StoreBackend)
	assert.Equal(t, 30*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 10, cfg.RateLimitPerMin)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadFallsBackOnInvalidValues(t *testing.T) {
	t.Setenv("ACCESS_TTL", "soon")
	t.Setenv("RATE_LIMIT_PER_MIN", "many")
	t.Setenv("CORS_ORIGINS", " , ")

	cfg := Load()

	assert.Equal(t, 8*time.Hour, cfg.AccessTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}
