package config

import (
    "strconv"
    "strings"
    "time"
)

// CacheConfig defines settings for the response cache middleware, used on
// the read-only car catalog endpoints. When Enabled is false or no Redis
// client is configured, caching is disabled. Methods lists the HTTP
// methods to cache. TTL defines the lifetime of cache entries.
// KeyStrategy determines which parts of the request contribute to the
// cache key. Prefix and MaxBodyBytes control namespacing and the maximum
// size of responses to cache.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    KeyStrategy  string
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envStr("CACHE_ENABLED", "true") == "true",
        Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
        TTL:          parseDur(envStr("CACHE_TTL", "30s")),
        KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
        Prefix:       envStr("CACHE_PREFIX", "cache"),
        MaxBodyBytes: atoi(envStr("CACHE_MAX_BODY_BYTES", "1048576")),
    }
}

func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        p = strings.TrimSpace(strings.ToUpper(p))
        if p != "" {
            m[p] = true
        }
    }
    return m
}

func atoi(s string) int {
    i, _ := strconv.Atoi(s)
    return i
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return time.Second
    }
    return d
}
