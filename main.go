package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"

	"github.com/kractero/cardex/cardex"
	"github.com/kractero/cardex/cardex/cache"
	"github.com/kractero/cardex/cardex/database"
	"github.com/kractero/cardex/cardex/handlers"
	"github.com/kractero/cardex/cardex/logger"
	"github.com/kractero/cardex/cardex/middleware"
	"github.com/kractero/cardex/cardex/services"
	"github.com/kractero/cardex/cardex/status"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler("cardex")
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting cardex query service",
		slog.String("version", version),
		slog.String("commit", commit))

	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := cardex.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	customHandler.SetLevel(cfg.Log.Level)
	slog.Info("Configuration loaded successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slog.Info("Initializing database connection...")
	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("Database connection established",
		slog.String("database", cfg.DB.Database))

	store := cache.New(cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      time.Duration(cfg.Redis.TTLSeconds) * time.Second,
	})

	table := status.NewTable()
	refresher := status.NewRefresher(table, store, cfg.Status.FeedURL)

	// One refresh at startup, then daily on the configured schedule. A failed
	// fetch keeps the previous snapshot; the next scheduled run is the retry.
	go func() {
		if err := refresher.Refresh(context.Background()); err != nil {
			slog.Warn("Initial CTE status refresh failed, starting with an empty snapshot",
				slog.Any("error", err))
		}
	}()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Status.Cron, func() {
		refreshCtx, refreshCancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer refreshCancel()
		if err := refresher.Refresh(refreshCtx); err != nil {
			logger.LogError("Scheduled CTE status refresh failed", err)
		}
	}); err != nil {
		slog.Error("Failed to schedule status refresh", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()

	cardService := services.NewCardService(db, store, table)
	webApp := &handlers.App{
		Cards:   cardService,
		Version: version,
	}

	app := fiber.New(fiber.Config{
		AppName:      "cardex",
		ServerHeader: "cardex",
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New())
	app.Use(middleware.LoggingMiddleware())

	limiter := middleware.RateLimit(
		cfg.RateLimit.Requests,
		time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
	)

	app.Get("/health", handlers.Health())
	app.Get("/api", limiter, handlers.CardsQuery(webApp))
	app.Post("/api/cte", limiter, handlers.CardStatus(webApp))

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	go func() {
		if err := app.Listen(address); err != nil {
			slog.Error("Failed to start server", slog.String("error", err.Error()))
		}
	}()
	slog.Info("App started and listening", slog.String("address", address))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	slog.Info("Shutting down...")

	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", slog.String("error", err.Error()))
	}

	if err := store.Close(); err != nil {
		slog.Error("Cache shutdown error", slog.String("error", err.Error()))
	}
	db.Close()
	slog.Info("Shutdown complete")
}
