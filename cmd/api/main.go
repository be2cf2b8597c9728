package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-hiring-backend/config"
	_ "go-hiring-backend/docs" // Important for Swagger
	v1 "go-hiring-backend/internal/delivery/http/v1"
	"go-hiring-backend/internal/repository/postgres"
	"go-hiring-backend/internal/usecase"
	"go-hiring-backend/internal/worker"
	"go-hiring-backend/pkg/auth"
	"go-hiring-backend/pkg/database"
	"go-hiring-backend/pkg/logger"
	"go-hiring-backend/pkg/redis"
	"go-hiring-backend/pkg/validation"
)

// @title           Hiring Backend API
// @version         1.0
// @description     Applications, hiring and verified work history.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting hiring backend", "port", cfg.Port, "dispatcher_embedded", cfg.DispatcherEmbedded)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional)
	if cfg.RedisURL != "" {
		if err := redis.Initialize(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, continuing without it", "error", err)
		}
	}
	defer redis.Close()
	notifier := redis.NewNotifier(redis.Client())

	// 5. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	jobRepo := postgres.NewJobRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)
	experienceRepo := postgres.NewWorkExperienceRepository(dbPool)
	profileRepo := postgres.NewWorkerProfileRepository(dbPool)

	// 6. Setup UseCases
	authUC := usecase.NewAuthUsecase(userRepo)
	applicationUC := usecase.NewApplicationUsecase(applicationRepo, jobRepo, notifier, cfg.DispatcherMaxAttempts)
	experienceUC := usecase.NewWorkExperienceUsecase(experienceRepo, profileRepo, validation.New())

	health := map[string]usecase.Pinger{"database": dbPool}
	if redis.Client() != nil {
		health["redis"] = usecase.PingerFunc(redis.HealthCheck)
	}
	healthUC := usecase.NewHealthUsecase(health)

	// 7. Setup Auth Provider (JWKS)
	jwksProvider := auth.NewProvider(cfg.JWKSURL)

	// 8. Setup Router
	router := v1.NewRouter(ctx, v1.RouterDeps{
		AuthUC:        authUC,
		ApplicationUC: applicationUC,
		ExperienceUC:  experienceUC,
		HealthUC:      healthUC,
		JWKSProvider:  jwksProvider,
		Config:        cfg,
		Redis:         redis.Client,
	})

	// 9. Outbox dispatcher, when this process owns it
	var runner *worker.Runner
	if cfg.DispatcherEmbedded {
		runner = worker.Start(ctx, dbPool, notifier, cfg)
	}

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}
	if runner != nil {
		if err := runner.Wait(shutdownCtx); err != nil {
			logger.Log.Error("Dispatcher did not stop in time", "error", err)
		}
	}

	logger.Log.Info("Server exiting")
}
