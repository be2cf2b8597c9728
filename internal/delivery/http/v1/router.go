package v1

import (
	"context"
	"time"

	"go-hiring-backend/config"
	"go-hiring-backend/internal/delivery/http/middleware"
	"go-hiring-backend/internal/domain"
	"go-hiring-backend/internal/usecase"
	"go-hiring-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC        domain.AuthUsecase
	ApplicationUC domain.ApplicationUsecase
	ExperienceUC  domain.WorkExperienceUsecase
	HealthUC      usecase.HealthUsecase
	JWKSProvider  *auth.Provider
	Config        *config.Config
	// Redis returns the shared client, or nil when rate limiting should stay in memory
	Redis func() *goredis.Client
}

// NewRouter builds the engine. ctx bounds the background cleanup of the
// in-memory rate limit stores.
func NewRouter(ctx context.Context, deps RouterDeps) *gin.Engine {
	r := gin.New()
	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	// Prometheus scrape endpoint stays outside the rate limit
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.RateLimitMiddleware(ctx,
		middleware.GlobalRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window, deps.Redis)))

	v1 := r.Group("/v1")

	health := NewHealthHandler(deps.HealthUC)
	v1.GET("/health", health.Health)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authHandler := NewAuthHandler(deps.AuthUC)
	applications := NewApplicationHandler(deps.ApplicationUC)
	experiences := NewWorkExperienceHandler(deps.ExperienceUC)

	// A token is enough to create the local user record
	v1.POST("/auth/sync",
		middleware.TokenMiddleware(deps.JWKSProvider, deps.Config),
		middleware.CSRFMiddleware(),
		authHandler.Sync,
	)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, deps.Config, deps.AuthUC))
	protected.Use(middleware.CSRFMiddleware())
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.GET("/applications/:id", applications.Get)
		protected.POST("/experiences/:id/end", experiences.EndEmployment)
	}

	workers := protected.Group("/workers")
	workers.Use(middleware.RequireRole(domain.RoleWorker))
	{
		workers.POST("/jobs/:jobId/applications",
			middleware.RateLimitMiddleware(ctx,
				middleware.ApplyRateLimitConfig(deps.Config.RateLimitApplyThreshold, window, deps.Redis)),
			applications.Apply,
		)
		workers.GET("/applications", applications.ListMine)
		workers.DELETE("/applications/:id", applications.Withdraw)

		workers.GET("/experiences", experiences.ListMine)
		workers.POST("/experiences", experiences.Create)
		workers.PUT("/experiences/:id", experiences.Update)
		workers.DELETE("/experiences/:id", experiences.Delete)
		workers.PATCH("/experiences/:id/visibility", experiences.ToggleVisibility)
		workers.GET("/profile", experiences.Profile)
	}

	employers := protected.Group("/employers")
	employers.Use(middleware.RequireRole(domain.RoleEmployer))
	{
		employers.GET("/jobs/:jobId/applications", applications.ListApplicants)
		employers.PATCH("/applications/:id/status", applications.UpdateStatus)
		employers.GET("/workers/:workerId/experiences", experiences.ListForWorker)
	}

	return r
}
