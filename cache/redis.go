package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"creme-store/models"

	"github.com/redis/go-redis/v9"
)

const generationKey = "products:generation"

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 10 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCache) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.get(ctx, productKey(id), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *RedisCache) SetProduct(ctx context.Context, product *models.Product) error {
	return r.set(ctx, productKey(product.ID), product)
}

func (r *RedisCache) GetProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	key, err := r.listKey(ctx, filter)
	if err != nil {
		return nil, err
	}
	var products []*models.Product
	if err := r.get(ctx, key, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *RedisCache) SetProducts(ctx context.Context, filter models.ProductFilter, products []*models.Product) error {
	key, err := r.listKey(ctx, filter)
	if err != nil {
		return err
	}
	return r.set(ctx, key, products)
}

// InvalidateLists bumps the list generation so every cached listing becomes unreachable.
func (r *RedisCache) InvalidateLists(ctx context.Context) error {
	if err := r.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("redis incr failed: %w", err)
	}
	return nil
}

func (r *RedisCache) get(ctx context.Context, key string, dst any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal cached value failed: %w", err)
	}
	return nil
}

func (r *RedisCache) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cached value failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(3)) * time.Minute
	if err := r.client.Set(ctx, key, data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) listKey(ctx context.Context, filter models.ProductFilter) (string, error) {
	gen, err := r.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return fmt.Sprintf("products:%d:%s|%s|%s|%s", gen,
		filter.CategorySlug, filter.SubCategory,
		strconv.FormatBool(filter.Featured), strconv.FormatBool(filter.WeeklyDeal)), nil
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}
