package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/SscSPs/retail_management_app/internal/adapters/messaging/rabbitmq"
	"github.com/SscSPs/retail_management_app/internal/core/domain"
	"github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/retail_management_app/internal/core/ports/services"
	"github.com/SscSPs/retail_management_app/internal/core/services"
	"github.com/SscSPs/retail_management_app/internal/handlers"
	"github.com/SscSPs/retail_management_app/internal/middleware"
	"github.com/SscSPs/retail_management_app/internal/platform/config"
	"github.com/SscSPs/retail_management_app/internal/repositories/cache"
	"github.com/SscSPs/retail_management_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/retail_management_app/internal/repositories/memory"
	redisrepo "github.com/SscSPs/retail_management_app/internal/repositories/redis"
	"github.com/SscSPs/retail_management_app/pkg/database"
	"github.com/gin-gonic/gin"
)

// @title Retail Management API
// @version 1.0
// @description Purchases, sales, stock and loyalty for a retail store.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	repos, closeStore, err := setupRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	if cfg.RedisAddr != "" {
		client := redisrepo.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer client.Close()
		sequencer := redisrepo.NewSequenceRepository(client)
		if err := sequencer.Ping(ctx); err != nil {
			logger.Error("Failed to connect to Redis", slog.String("addr", cfg.RedisAddr), slog.String("error", err.Error()))
			os.Exit(1)
		}
		// Continue from the numbers the store already handed out.
		if previous, ok := repos.SequenceRepo.(repositories.SequenceInspector); ok {
			prefixes := []string{domain.Inbound.DocumentPrefix(), domain.Outbound.DocumentPrefix()}
			if err := sequencer.SeedFrom(ctx, previous, prefixes...); err != nil {
				logger.Error("Failed to seed Redis document sequences", slog.String("error", err.Error()))
				os.Exit(1)
			}
		}
		repos.SequenceRepo = sequencer
		logger.Info("Document numbers are issued by Redis", slog.String("addr", cfg.RedisAddr))
	}

	if cfg.CatalogCacheTTL > 0 {
		repos.CatalogRepo = cache.NewCatalogCache(repos.CatalogRepo, cfg.CatalogCacheTTL)
	}

	var publisher portssvc.EventPublisher
	if cfg.AMQPURL != "" {
		conn, ch, err := rabbitmq.SetupConn(logger, cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Error("Failed to initialize RabbitMQ", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer conn.Close()
		defer ch.Close()
		publisher = rabbitmq.NewPublisher(ch, cfg.AMQPExchange)
		logger.Info("Publishing transaction events", slog.String("exchange", cfg.AMQPExchange))
	}

	serviceContainer := services.NewServiceContainer(cfg, repos, publisher)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	limiterInstance, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		logger.Error("Failed to create rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS, rate limiting)
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.RateLimit(limiterInstance),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// setupRepositories opens the configured store and returns its repositories
// together with a function releasing it.
func setupRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.RepositoryProvider, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("Using in-memory storage")
		return memory.NewStore().NewRepositoryProvider(), func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return repositories.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(logger, cfg.DatabaseURL, database.DefaultMigrationsPath); err != nil {
		dbPool.Close()
		return repositories.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}
