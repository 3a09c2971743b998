package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hunter4ass/OWLD/internal/domain"
	"github.com/hunter4ass/OWLD/pkg/logging"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CartRepository stores each user's cart as a single JSON record, read and
// rewritten whole on every mutation. A missing or unparsable record reads
// as an empty cart.
type CartRepository interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, userID string, cart *domain.Cart) error
	Clear(ctx context.Context, userID string) error
}

const cartTTL = 7 * 24 * time.Hour

type cartRepo struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCartRepository(client *redis.Client, logger *zap.Logger) CartRepository {
	return &cartRepo{
		client: client,
		logger: logger,
	}
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

func (r *cartRepo) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	val, err := r.client.Get(ctx, cartKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return &domain.Cart{}, nil
	}
	if err != nil {
		logging.Error(
			ctx,
			r.logger,
			"Failed to read cart",
			zap.String("user_id", userID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error reading cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(val), &cart); err != nil {
		logging.Warn(
			ctx,
			r.logger,
			"Cart record is unparsable, treating as empty",
			zap.String("user_id", userID),
			zap.Error(err),
		)

		return &domain.Cart{}, nil
	}

	return &cart, nil
}

func (r *cartRepo) Save(ctx context.Context, userID string, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("error marshalling cart: %w", err)
	}

	if err := r.client.Set(ctx, cartKey(userID), data, cartTTL).Err(); err != nil {
		logging.Error(
			ctx,
			r.logger,
			"Failed to save cart",
			zap.String("user_id", userID),
			zap.Error(err),
		)

		return fmt.Errorf("error saving cart: %w", err)
	}

	return nil
}

func (r *cartRepo) Clear(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		logging.Error(
			ctx,
			r.logger,
			"Failed to clear cart",
			zap.String("user_id", userID),
			zap.Error(err),
		)

		return fmt.Errorf("error clearing cart: %w", err)
	}

	return nil
}
