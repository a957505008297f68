package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookstore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query, u.ID, u.Name, strings.ToLower(u.Email), u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.InvalidInput("an account with this email already exists")
		}
		r.logger.Error().Err(err).Msg("failed to create user")
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, u *model.User) error {
	query := `UPDATE users SET name = $2, email = $3, updated_at = $4 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, u.ID, u.Name, strings.ToLower(u.Email), u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.InvalidInput("an account with this email already exists")
		}
		r.logger.Error().Err(err).Str("user_id", u.ID.String()).Msg("failed to update user")
		return fmt.Errorf("failed to update user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.one(ctx, "id = $1", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.one(ctx, "email = $1", strings.ToLower(email))
}

func (r *userRepository) one(ctx context.Context, where string, arg any) (*model.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users WHERE ` + where

	var u model.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}
