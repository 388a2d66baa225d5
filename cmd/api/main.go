package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nexus-store/internal/auth"
	"nexus-store/internal/catalogfeed"
	"nexus-store/internal/config"
	"nexus-store/internal/database"
	"nexus-store/internal/events"
	"nexus-store/internal/handler"
	"nexus-store/internal/idempotency"
	"nexus-store/internal/repository"
	"nexus-store/internal/router"
	"nexus-store/internal/service"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting nexus-store API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Database.Migrate {
		if err := database.Migrate(cfg.Database.ConnectionString(), logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	guard, closeGuard, err := newGuard(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer closeGuard()

	publisher := events.NewNopPublisher()
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Kafka, logger)
	} else {
		logger.Info().Msg("kafka disabled, order events are not published")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close event publisher")
		}
	}()

	// Initialize repositories
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	paymentRepo := repository.NewPaymentRepository(pool, logger)
	reviewRepo := repository.NewReviewRepository(pool, logger)

	if len(cfg.CatalogFeed.Files) > 0 {
		importCatalog(ctx, cfg, categoryRepo, productRepo, logger)
	}

	// Initialize services
	categoryService := service.NewCategoryService(categoryRepo, logger)
	productService := service.NewProductService(productRepo, categoryRepo, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, cartRepo, guard, publisher, logger)
	paymentService := service.NewPaymentService(paymentRepo, orderRepo, publisher, logger)
	reviewService := service.NewReviewService(reviewRepo, orderRepo, productRepo, logger)

	// Initialize HTTP handlers
	validate := handler.NewValidator()
	handlers := router.Handlers{
		Categories: handler.NewCategoryHandler(categoryService, validate, logger),
		Products:   handler.NewProductHandler(productService, validate, logger),
		Cart:       handler.NewCartHandler(cartService, validate, logger),
		Orders:     handler.NewOrderHandler(orderService, validate, logger),
		Payments:   handler.NewPaymentHandler(paymentService, validate, logger),
		Reviews:    handler.NewReviewHandler(reviewService, validate, logger),
	}

	verifier := auth.NewHS256Verifier([]byte(cfg.Auth.JWTSecret), cfg.Auth.JWTIssuer)
	mux := router.New(handlers, verifier, cfg.RateLimit, pool.Ping, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newGuard connects the Redis idempotency guard, or returns a guard that
// accepts every key when Redis is disabled.
func newGuard(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (idempotency.Guard, func(), error) {
	if !cfg.Enabled {
		logger.Info().Msg("redis disabled, checkout idempotency keys are not enforced")
		return idempotency.NewNopGuard(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	logger.Info().Str("addr", cfg.Addr).Msg("redis idempotency guard connected")

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close redis client")
		}
	}
	return idempotency.NewRedisGuard(client, cfg.IdempotencyWindow(), logger), closeFn, nil
}

// importCatalog applies the configured product feeds. Failures are logged;
// the server still starts with whatever the database already holds.
func importCatalog(
	ctx context.Context,
	cfg *config.Config,
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	logger zerolog.Logger,
) {
	var s3Loader catalogfeed.Loader
	if cfg.S3.Enabled {
		loader, err := catalogfeed.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = loader
		}
	} else {
		logger.Info().Msg("using local file system for catalog feeds (S3 disabled)")
	}

	loader := catalogfeed.NewFallbackLoader(s3Loader, catalogfeed.NewFileLoader(logger), cfg.S3.Prefix, logger)
	importer := catalogfeed.NewImporter(loader, categories, products, logger)

	if _, err := importer.Import(ctx, cfg.CatalogFeed.Files); err != nil {
		logger.Warn().Err(err).Msg("catalog import finished with errors")
	}
}
