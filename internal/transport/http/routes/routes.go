package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/infra/config"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/transport/http/handlers"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/transport/http/middleware"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Registration  *usecase.RegistrationService
	Users         *usecase.UserService
	Customers     *usecase.CustomerService
	PasswordReset *usecase.PasswordResetService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Services    ServiceSet
	Metrics     *middleware.HTTPMetrics
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.RequireAuth(deps.Services.Auth)
	isDev := deps.Config.App.Env == "development"

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authHandler := handlers.NewAuthHandler(
			deps.Services.Auth,
			deps.Services.Registration,
			deps.Services.PasswordReset,
			handlers.WithDevMode(isDev),
		)
		authHandler.RegisterRoutes(authGroup,
			rateLimit(deps, "auth_register_ip", deps.Config.RateLimit.RegisterMaxAttempts),
			rateLimit(deps, "auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts),
			rateLimit(deps, "password_reset_ip", deps.Config.RateLimit.ResetMaxAttempts),
		)

		userGroup := api.Group("/users")
		userGroup.Use(authMiddleware)
		handlers.NewUserHandler(deps.Services.Auth, deps.Services.Users).RegisterRoutes(userGroup)

		customerGroup := api.Group("/customers")
		customerGroup.Use(authMiddleware)
		handlers.NewCustomerHandler(deps.Services.Customers).RegisterRoutes(customerGroup)
	}

	return r
}

// rateLimit builds a per-IP limiter for a credential endpoint, or nil when
// disabled.
func rateLimit(deps Dependencies, name string, limit int) gin.HandlerFunc {
	if deps.RateLimiter == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	return deps.RateLimiter.Limit(middleware.RateLimitRule{
		Name:   name,
		Limit:  limit,
		Window: window,
	})
}
