package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/port"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/infra/config"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/infra/database"
	kafkainfra "github.com/HasaraLiyanagamage/Customer-Managment/internal/infra/kafka"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/infra/logger"
	redisinfra "github.com/HasaraLiyanagamage/Customer-Managment/internal/infra/redis"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/infra/security"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/infra/storage"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/repository"
	postgresrepo "github.com/HasaraLiyanagamage/Customer-Managment/internal/repository/postgres"
	redisrepo "github.com/HasaraLiyanagamage/Customer-Managment/internal/repository/redis"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/transport/http/middleware"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/transport/http/routes"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/usecase"
)

// Application owns the wired service graph and the HTTP server lifecycle.
type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	kafka  *kafkainfra.Producer
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)
	if err := seedRoles(ctx, repos.Roles, log); err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("seed roles: %w", err)
	}

	codec, err := security.NewTokenCodec(cfg.JWT.Secret, cfg.App.Name, cfg.JWT.AccessTokenTTL, cfg.JWT.ResetTokenTTL)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init token codec: %w", err)
	}

	passwordValidator := security.DefaultPasswordValidator(cfg.Password.MinLength, cfg.Password.MinScore)

	files, err := storage.NewDiskStore(cfg.Uploads.Directory, cfg.Uploads.MaxFileSize)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init document store: %w", err)
	}

	var eventPublisher port.EventPublisher
	var producer *kafkainfra.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), "crm:rate-limit", rateLimitWindow*2)
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	customerService := usecase.NewCustomerService(repos.Customers, repos.Documents, files, eventPublisher, log)
	if len(cfg.Uploads.AllowedTypes) > 0 {
		customerService = customerService.WithAllowedFileTypes(cfg.Uploads.AllowedTypes)
	}

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     metrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:          usecase.NewAuthService(repos.Users, codec, eventPublisher, log),
			Registration:  usecase.NewRegistrationService(repos.Users, repos.Roles, passwordValidator, codec, eventPublisher, log),
			Users:         usecase.NewUserService(repos.Users, repos.Roles, repos.Customers, passwordValidator, eventPublisher, log),
			Customers:     customerService,
			PasswordReset: usecase.NewPasswordResetService(repos.Users, codec, passwordValidator, eventPublisher, log),
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		kafka:  producer,
	}, nil
}

// seedRoles inserts the closed role set when it is missing, so a fresh
// database can serve registrations without a manual migration step.
func seedRoles(ctx context.Context, roles port.RoleRepository, log *zap.Logger) error {
	for _, spec := range []struct {
		name, description string
	}{
		{domain.RoleAdmin, "Full access to users and all customer records"},
		{domain.RoleManager, "Manages own customer records"},
		{domain.RoleCustomer, "Default role for self-registered accounts"},
	} {
		_, err := roles.GetByName(ctx, spec.name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("look up role %s: %w", spec.name, err)
		}

		description := spec.description
		role := domain.Role{
			ID:          uuid.NewString(),
			Name:        spec.name,
			Description: &description,
			CreatedAt:   time.Now().UTC(),
		}
		if err := roles.Create(ctx, role); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("create role %s: %w", spec.name, err)
		}
		log.Info("seeded role", zap.String("role", spec.name))
	}
	return nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.kafka != nil {
			_ = a.kafka.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting CRM API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
