package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/rentaly/car-rental/internal/config"
    "github.com/rentaly/car-rental/internal/handler"
    "github.com/rentaly/car-rental/internal/middleware"
    "github.com/rentaly/car-rental/internal/model"
    "github.com/rentaly/car-rental/internal/repository"
)

// Handlers collects every handler the router wires up.
type Handlers struct {
    Auth    *handler.AuthHandler
    Cars    *handler.CarHandler
    Booking *handler.BookingHandler
    Users   *handler.UserHandler
    Upload  *handler.UploadHandler
}

// Register wires the full route table. Three tiers:
//
//   - open: health checks and the /v1/auth credential endpoints
//   - user: everything else under /v1, behind JWT with the
//     active-session check; catalog reads are additionally
//     response-cached when Redis is up
//   - admin: catalog writes, image upload and the global invoice list
//
// The /v1/auth group gets its own tighter rate-limit bucket since
// credential endpoints are where brute force concentrates.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client, tokens *repository.TokenRepo) {
    rlCfg := config.LoadRateLimitConfig()
    cacheCfg := config.LoadCacheConfig()

    authRL := rlCfg
    authRL.Capacity = rlCfg.AuthCapacity
    authRL.Prefix = rlCfg.Prefix + ":auth"

    limiter := middleware.NewTokenBucket(rlCfg, rdb)
    authLimiter := middleware.NewTokenBucket(authRL, rdb)
    cache := middleware.NewRedisCache(cacheCfg, rdb)

    e.GET("/healthz", handler.Health)
    e.GET("/healthz/redis", handler.RedisHealth(rdb))

    // Credential endpoints: no JWT, tight bucket.
    auth := e.Group("/v1/auth", authLimiter)
    auth.POST("/register", h.Auth.Register)
    auth.POST("/login", h.Auth.Login)
    auth.POST("/refresh", h.Auth.Refresh)
    auth.POST("/logout", h.Auth.Logout)

    jwt := middleware.JWTAuth(cfg.JWTSecret, tokens)

    // Catalog reads are cacheable but, like every /v1 route outside
    // /v1/auth, still require a valid session.
    cars := e.Group("/v1/cars", limiter, jwt)
    cars.GET("", h.Cars.List, cache)
    cars.GET("/:id", h.Cars.GetByID, cache)
    cars.GET("/name/:name", h.Cars.GetByName, cache)
    cars.GET("/type/:type", h.Cars.ListByType, cache)
    cars.GET("/:carId/availability", h.Booking.Availability)
    cars.GET("/:carId/images", h.Upload.ListImages)

    // Catalog writes are admin only.
    carsAdmin := e.Group("/v1/cars", limiter, jwt, middleware.RequireRole(model.RoleAdmin))
    carsAdmin.POST("", h.Cars.Create)
    carsAdmin.PUT("/:id", h.Cars.Update)
    carsAdmin.DELETE("/:id", h.Cars.Delete)

    upload := e.Group("/v1/upload", limiter, jwt, middleware.RequireRole(model.RoleAdmin))
    upload.POST("/car-image", h.Upload.CarImage)

    // Rental lifecycle, available to any authenticated user; ownership
    // of individual invoices is checked in the handlers.
    bookings := e.Group("/v1/bookings", limiter, jwt)
    bookings.POST("/book/:carId", h.Booking.Book)
    bookings.POST("/:id/return", h.Booking.Return)
    bookings.POST("/:id/cancel", h.Booking.Cancel)
    bookings.GET("/all", h.Booking.ListAll, middleware.RequireRole(model.RoleAdmin))
    bookings.GET("/user/:userId", h.Booking.ListByUser)
    bookings.GET("/:id", h.Booking.GetByID)

    users := e.Group("/v1/users", limiter, jwt)
    users.GET("/:id", h.Users.GetByID)

    me := e.Group("/v1", limiter, jwt)
    me.GET("/me", h.Auth.Me)
}
