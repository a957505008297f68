package database

import (
	"context"
	"fmt"

	"bookstore/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewRedisClient creates a Redis client for the cart store and verifies connectivity.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info().
		Str("addr", opts.Addr).
		Int("db", opts.DB).
		Msg("redis client created successfully")

	return client, nil
}
