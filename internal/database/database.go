package database

import (
	"context"
	"fmt"
	"time"

	"bookstore/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// retryDelay is the pause after the first failed ping; it grows linearly per attempt.
const retryDelay = time.Second

// NewPool creates the PostgreSQL pool used by every repository. The database
// may still be starting when the API boots, so the first ping is retried up to
// cfg.ConnectAttempts times.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Second
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute
	poolConfig.ConnConfig.RuntimeParams["application_name"] = config.AppName

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Int("max_connections", cfg.MaxConnections).
		Int("min_connections", cfg.MinConnections).
		Msg("creating database connection pool")

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := ping(ctx, pool, max(cfg.ConnectAttempts, 1), logger); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info().Msg("database connection pool created successfully")
	return pool, nil
}

func ping(ctx context.Context, pool *pgxpool.Pool, attempts int, logger zerolog.Logger) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = pool.Ping(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		wait := time.Duration(attempt) * retryDelay
		logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("database not reachable yet")

		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to ping database: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("failed to ping database after %d attempts: %w", attempts, err)
}
