package main // Entry point package

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/rentaly/car-rental/internal/config"
    "github.com/rentaly/car-rental/internal/database"
    "github.com/rentaly/car-rental/internal/handler"
    "github.com/rentaly/car-rental/internal/queue"
    "github.com/rentaly/car-rental/internal/repository"
    "github.com/rentaly/car-rental/internal/router"
    "github.com/rentaly/car-rental/internal/service"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Nil when Redis is unreachable; rate limiting and caching then
    // degrade to pass-through instead of taking the API down.
    rdb := config.NewRedisClient()

    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    cars := repository.NewCarRepo(db)
    invoices := repository.NewInvoiceRepo(db)
    inventory := repository.NewInventoryRepo(db)
    images := repository.NewCarImageRepo(db)

    booking := service.NewBookingService(db, cars, invoices, inventory)

    h := router.Handlers{
        Auth:    handler.NewAuthHandler(cfg, users, tokens),
        Cars:    handler.NewCarHandler(cars),
        Booking: handler.NewBookingHandler(booking, invoices, cars, inventory),
        Users:   handler.NewUserHandler(users),
        Upload:  handler.NewUploadHandler(cfg, cars, images),
    }

    e := echo.New()
    e.HideBanner = true
    router.Register(e, h, cfg, rdb, tokens)

    // Consume invoice lifecycle events in the background; the consumer
    // reconnects on broker failure and never crashes the server.
    go func() {
        if err := queue.StartRentalConsumer(); err != nil {
            log.Printf("rabbitmq consumer stopped: %v", err)
        }
    }()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
