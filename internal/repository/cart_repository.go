package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bookstore/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface on Redis.
// Each cart is one JSON document that expires after ttl of inactivity.
type cartRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCartRepository creates a new Redis-backed cart repository.
func NewCartRepository(client *redis.Client, ttl time.Duration, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

func cartKey(userID uuid.UUID) string {
	return fmt.Sprintf("cart:user:%s", userID)
}

// Get returns the user's cart, or (nil, nil) if none has been stored.
func (r *cartRepository) Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to read cart")
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	var cart model.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to decode cart")
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return &cart, nil
}

// Save stores the cart, refreshing its expiry.
func (r *cartRepository) Save(ctx context.Context, cart *model.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := r.client.Set(ctx, cartKey(cart.UserID), data, r.ttl).Err(); err != nil {
		r.logger.Error().Err(err).Str("user_id", cart.UserID.String()).Msg("failed to save cart")
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

