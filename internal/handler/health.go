package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
)

// Health reports that the HTTP server is up. Used by load balancers.
func Health(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// RedisHealth reports whether the Redis backing the rate limiter and
// response cache is reachable. A nil client or a failed ping degrades
// to 503 without affecting the main API.
func RedisHealth(rdb *redis.Client) echo.HandlerFunc {
    return func(c echo.Context) error {
        if rdb == nil {
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "down", "error": "redis not configured"})
        }
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if err := rdb.Ping(ctx).Err(); err != nil {
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "down"})
        }
        return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
    }
}
