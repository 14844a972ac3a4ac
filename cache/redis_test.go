package cache

import (
	"context"
	"testing"
	"time"

	"creme-store/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client), mr
}

func TestProduct_RoundTrip(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	_, err := cache.GetProduct(ctx, "p1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.SetProduct(ctx, &models.Product{ID: "p1", Name: "Silk Scarf", OfferPrice: 1200}))

	got, err := cache.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Silk Scarf", got.Name)

	ttl := mr.TTL(productKey("p1"))
	assert.GreaterOrEqual(t, ttl, 10*time.Minute)
	assert.Less(t, ttl, 13*time.Minute)
}

func TestProduct_InvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(productKey("p1"), "{not json"))

	_, err := cache.GetProduct(context.Background(), "p1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestProducts_KeyedByFilter(t *testing.T) {
	cache, _ := setupTestRedis(t)
	ctx := context.Background()

	featured := models.ProductFilter{Featured: true}
	require.NoError(t, cache.SetProducts(ctx, featured, []*models.Product{{ID: "p1"}, {ID: "p2"}}))

	got, err := cache.GetProducts(ctx, featured)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = cache.GetProducts(ctx, models.ProductFilter{WeeklyDeal: true})
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestInvalidateLists(t *testing.T) {
	cache, _ := setupTestRedis(t)
	ctx := context.Background()

	filter := models.ProductFilter{CategorySlug: "women-clothing"}
	require.NoError(t, cache.SetProducts(ctx, filter, []*models.Product{{ID: "p1"}}))
	require.NoError(t, cache.SetProduct(ctx, &models.Product{ID: "p1"}))

	require.NoError(t, cache.InvalidateLists(ctx))

	_, err := cache.GetProducts(ctx, filter)
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = cache.GetProduct(ctx, "p1")
	assert.NoError(t, err)
}
