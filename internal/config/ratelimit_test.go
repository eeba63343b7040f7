package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
    cfg := LoadRateLimitConfig()
    assert.True(t, cfg.Enabled)
    assert.Equal(t, 60, cfg.Capacity)
    assert.Equal(t, 10, cfg.AuthCapacity)
    assert.Equal(t, 1, cfg.RefillTokens)
    assert.Equal(t, time.Second, cfg.RefillInterval)
    assert.Equal(t, "ip_user_route", cfg.KeyStrategy)
}

func TestLoadRateLimitConfigClampsNonsense(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_AUTH_CAPACITY", "-5")
    t.Setenv("RATE_LIMIT_REFILL_TOKENS", "0")
    t.Setenv("RATE_LIMIT_TTL", "1ms")

    cfg := LoadRateLimitConfig()
    assert.Equal(t, 1, cfg.Capacity)
    assert.Equal(t, 1, cfg.AuthCapacity)
    assert.Equal(t, 1, cfg.RefillTokens)
    // TTL must cover several refill intervals or buckets die too early.
    assert.GreaterOrEqual(t, cfg.TTL, 5*cfg.RefillInterval)
}

func TestLoadRateLimitConfigBurstOverride(t *testing.T) {
    t.Setenv("RATE_LIMIT_BURST", "25")
    t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")

    cfg := LoadRateLimitConfig()
    assert.Equal(t, 25, cfg.Capacity)
    assert.Equal(t, 1, cfg.RefillTokens)
    assert.Equal(t, 2*time.Second, cfg.RefillInterval)
}

func TestLoadRateLimitConfigDisabled(t *testing.T) {
    t.Setenv("RATE_LIMIT_ENABLED", "false")
    cfg := LoadRateLimitConfig()
    assert.False(t, cfg.Enabled)
}
