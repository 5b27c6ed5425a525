/**
 * @description
 * This is the main entry point for the member portal service. It initializes
 * and wires together all the components of the application: configuration,
 * database connection, repository, event producer, Stripe client, service,
 * rate limiters, background jobs, and the HTTP router. Finally, it starts
 * the HTTP server to listen for incoming requests.
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/James-Liebel/Mine-Performance-3-sub001/internal/api"
	"github.com/James-Liebel/Mine-Performance-3-sub001/internal/app"
	"github.com/James-Liebel/Mine-Performance-3-sub001/internal/config"
	"github.com/James-Liebel/Mine-Performance-3-sub001/internal/store"
	"github.com/James-Liebel/Mine-Performance-3-sub001/pkg/middleware"
	"github.com/James-Liebel/Mine-Performance-3-sub001/pkg/rabbitmq"
	"github.com/James-Liebel/Mine-Performance-3-sub001/pkg/stripeclient"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load .env for local development; environment variables win in deployment.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Establish the PostgreSQL connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = 20
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	// Event producer, with a logging no-op fallback when the broker is down
	var publisher rabbitmq.Publisher
	if cfg.AMQPURL != "" {
		producer, err := rabbitmq.NewEventProducer(cfg.AMQPURL, logger)
		if err != nil {
			logger.Warn("rabbitmq unavailable, falling back to no-op publisher", "error", err)
			publisher = &rabbitmq.NoopPublisher{Logger: logger}
		} else {
			publisher = producer
		}
	} else {
		publisher = &rabbitmq.NoopPublisher{Logger: logger}
	}
	defer publisher.Close()

	// Initialize application layers
	repository := store.NewRepository(dbpool)
	stripe := stripeclient.NewClient(cfg.StripeSecretKey)
	service := app.NewService(repository, stripe, publisher, logger, cfg.StripeReturnURL)

	window := time.Duration(cfg.RateWindowSeconds) * time.Second
	mutationLimiter := middleware.NewRateLimiter(cfg.MutationRateLimit, window)
	readLimiter := middleware.NewRateLimiter(cfg.ReadRateLimit, window)

	handler := api.NewHandler(service, cfg.JWTSecret, cfg.AdminEmail, cfg.AdminPasswordHash)
	router := api.NewRouter(handler, cfg.JWTSecret, mutationLimiter, readLimiter)

	scheduler := app.NewScheduler(service, []*middleware.RateLimiter{mutationLimiter, readLimiter}, logger)
	scheduler.Start()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	<-scheduler.Stop().Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
