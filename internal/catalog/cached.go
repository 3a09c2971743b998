package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hunter4ass/OWLD/internal/domain"
	"github.com/redis/go-redis/v9"
)

// cachedService keeps catalog responses in Redis for a short while so the
// shelf does not hammer the upstream API on every page view. Cache
// failures fall through to the wrapped service.
type cachedService struct {
	next        Service
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewCachedService(next Service, redisClient *redis.Client) Service {
	return &cachedService{
		next:        next,
		redisClient: redisClient,
		cacheTTL:    time.Minute * 10,
	}
}

func (s *cachedService) GetAllProducts(ctx context.Context) []domain.Product {
	const key = "catalog:all"

	val, err := s.redisClient.Get(ctx, key).Result()
	if err == nil {
		var products []domain.Product
		if err := json.Unmarshal([]byte(val), &products); err == nil {
			return products
		}
	}

	products := s.next.GetAllProducts(ctx)

	if data, err := json.Marshal(products); err == nil {
		s.redisClient.Set(ctx, key, data, s.cacheTTL)
	}

	return products
}

func (s *cachedService) GetProductsByCategory(ctx context.Context, category string) []domain.Product {
	key := fmt.Sprintf("catalog:category:%s", category)

	val, err := s.redisClient.Get(ctx, key).Result()
	if err == nil {
		var products []domain.Product
		if err := json.Unmarshal([]byte(val), &products); err == nil {
			return products
		}
	}

	products := s.next.GetProductsByCategory(ctx, category)

	if data, err := json.Marshal(products); err == nil {
		s.redisClient.Set(ctx, key, data, s.cacheTTL)
	}

	return products
}

func (s *cachedService) GetCategories(ctx context.Context) []string {
	const key = "catalog:categories"

	val, err := s.redisClient.Get(ctx, key).Result()
	if err == nil {
		var categories []string
		if err := json.Unmarshal([]byte(val), &categories); err == nil {
			return categories
		}
	}

	categories := s.next.GetCategories(ctx)

	if data, err := json.Marshal(categories); err == nil {
		s.redisClient.Set(ctx, key, data, s.cacheTTL)
	}

	return categories
}

func (s *cachedService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	key := fmt.Sprintf("catalog:product:%d", id)

	val, err := s.redisClient.Get(ctx, key).Result()
	if err == nil {
		var product domain.Product
		if err := json.Unmarshal([]byte(val), &product); err == nil {
			return &product, nil
		}
	}

	product, err := s.next.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(product); err == nil {
		s.redisClient.Set(ctx, key, data, s.cacheTTL)
	}

	return product, nil
}
