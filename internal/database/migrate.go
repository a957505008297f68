package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

//go:embed schema.sql
var schema string

// Schema returns the DDL applied by Migrate.
func Schema() string {
	return schema
}

// Migrate creates all tables and indexes if they do not already exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		logger.Error().Err(err).Msg("failed to apply database schema")
		return fmt.Errorf("failed to apply database schema: %w", err)
	}

	logger.Info().Msg("database schema applied")
	return nil
}
