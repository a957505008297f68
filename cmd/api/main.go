package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookstore/internal/auth"
	"bookstore/internal/config"
	"bookstore/internal/database"
	"bookstore/internal/ethereum"
	"bookstore/internal/events"
	"bookstore/internal/handler"
	"bookstore/internal/middleware"
	"bookstore/internal/model"
	"bookstore/internal/payment"
	"bookstore/internal/repository"
	"bookstore/internal/router"
	"bookstore/internal/service"
	"bookstore/internal/worker"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
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

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting bookstore API server")

	// Amounts are rendered as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	bookRepo := repository.NewBookRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	paymentRepo := repository.NewPaymentRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	cartRepo := repository.NewCartRepository(redisClient, cfg.Redis.CartTTL, logger)

	// Initialize payment providers
	registry, closeBridge, err := buildRegistry(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize payment providers: %w", err)
	}
	defer closeBridge()

	publisher, err := events.New(ctx, cfg.Events, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	defer publisher.Close()

	// Initialize services
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	bookService := service.NewBookService(bookRepo, logger)
	categoryService := service.NewCategoryService(categoryRepo, bookRepo, logger)
	cartService := service.NewCartService(cartRepo, bookRepo, logger)
	orderService := service.NewOrderService(orderRepo, bookRepo, cartRepo, registry, logger)
	paymentService := service.NewPaymentService(paymentRepo, orderRepo, orderService, registry, publisher, cfg.Payment.Currency, logger)
	authService := service.NewAuthService(userRepo, tokens, logger)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Books:      handler.NewBookHandler(bookService, logger),
		Categories: handler.NewCategoryHandler(categoryService, logger),
		Cart:       handler.NewCartHandler(cartService, logger),
		Orders:     handler.NewOrderHandler(orderService, logger),
		Payments:   handler.NewPaymentHandler(paymentService, logger),
		Auth:       handler.NewAuthHandler(authService, logger),
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst, 10*time.Minute)
	}

	// Initialize router
	mux := router.New(handlers, tokens, limiter, logger)

	// Start the stale payment sweeper
	sweeper := worker.NewSweeper(paymentService, &worker.SweeperConfig{
		Interval: cfg.Payment.SweepInterval,
		TTLs: map[model.PaymentMethod]time.Duration{
			model.MethodEthereum:     cfg.Payment.EthereumPendingTTL,
			model.MethodBankTransfer: cfg.Payment.BankPendingTTL,
		},
	}, logger)
	sweeperDone := sweeper.Start(ctx)

	// Runs before the pool and Redis client are closed
	defer func() {
		cancel()
		<-sweeperDone
	}()

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Stop background work before draining requests
		cancel()

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// buildRegistry registers the payment providers. The Ethereum provider is only
// available when enabled; its contract artifact comes from S3 with a local
// file fallback. The returned func releases the node connection.
func buildRegistry(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*payment.Registry, func(), error) {
	registry, err := payment.NewRegistry(
		payment.NewCashOnDelivery(logger),
		payment.NewBankTransfer(cfg.Payment.BankAutoConfirm, logger),
	)
	if err != nil {
		return nil, nil, err
	}

	if !cfg.Ethereum.Enabled {
		logger.Info().Msg("ethereum payments disabled")
		return registry, func() {}, nil
	}

	var artifact *ethereum.Artifact
	if cfg.Ethereum.ArtifactPath != "" {
		fileLoader := ethereum.NewFileLoader(logger)
		var s3Loader ethereum.ArtifactLoader

		if cfg.S3.Enabled {
			// Create S3 loader
			s3Loader, err = ethereum.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
			if err != nil {
				logger.Warn().
					Err(err).
					Msg("failed to initialise S3 loader, falling back to local file system only")
				s3Loader = nil
			}
		}

		loader := ethereum.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled, logger)
		artifact, err = loader.Load(ctx, cfg.Ethereum.ArtifactPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load contract artifact: %w", err)
		}
	}

	bridge, closeBridge, err := ethereum.Dial(ctx, cfg.Ethereum, artifact, logger)
	if err != nil {
		return nil, nil, err
	}

	if err := registry.Register(payment.NewEthereum(bridge, logger)); err != nil {
		closeBridge()
		return nil, nil, err
	}

	return registry, closeBridge, nil
}
