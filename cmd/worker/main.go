package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-hiring-backend/config"
	"go-hiring-backend/internal/worker"
	"go-hiring-backend/pkg/database"
	"go-hiring-backend/pkg/logger"
	"go-hiring-backend/pkg/redis"
)

// The worker process runs the outbox dispatcher, the lease reaper and the
// application counter reconciler without serving HTTP.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.RedisURL != "" {
		if err := redis.Initialize(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, dispatcher will poll", "error", err)
		}
	}
	defer redis.Close()

	runner := worker.Start(ctx, dbPool, redis.NewNotifier(redis.Client()), cfg)
	logger.Log.Info("Worker started",
		"dispatcher_id", runner.Dispatcher.ID,
		"poll_interval", cfg.DispatcherPollInterval.String(),
	)

	<-ctx.Done()
	logger.Log.Info("Shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.DispatcherLeaseSeconds)*time.Second)
	defer cancel()
	if err := runner.Wait(shutdownCtx); err != nil {
		logger.Log.Error("Worker forced to shutdown", "error", err)
	}

	logger.Log.Info("Worker exiting")
}
