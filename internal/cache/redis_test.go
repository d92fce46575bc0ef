package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/domain"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client), mr
}

func TestGet_Success(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()
	identity := "guest:3f1a9c2e"

	cart := &domain.Cart{
		Identity: identity,
		Items: []domain.CartItem{
			{ID: "item-1", ProductID: "wreath-classic", Quantity: 2, UnitPrice: 1500, TotalPrice: 3000},
			{ID: "item-2", ProductID: "bouquet-lilies", Quantity: 1, UnitPrice: 900, TotalPrice: 900},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	cartJSON, _ := json.Marshal(cart)
	mr.Set(cacheKey(identity), string(cartJSON))

	result, err := cache.Get(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, identity, result.Identity)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, "wreath-classic", result.Items[0].ProductID)
}

func TestGet_CacheMiss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	result, err := cache.Get(context.Background(), "guest:nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestGet_InvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)
	identity := "guest:3f1a9c2e"

	require.NoError(t, mr.Set(cacheKey(identity), `{"identity":`))

	_, err := cache.Get(context.Background(), identity)
	require.ErrorContains(t, err, "unmarshal cached cart failed")
}

func TestSet_Success(t *testing.T) {
	cache, mr := setupTestRedis(t)
	identity := "user:42"

	cart := &domain.Cart{
		Identity: identity,
		Items: []domain.CartItem{
			{ID: "item-1", ProductID: "wreath-roses", Quantity: 1, UnitPrice: 2400, TotalPrice: 2400},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	err := cache.Set(context.Background(), identity, cart)
	require.NoError(t, err)

	stored, err := mr.Get(cacheKey(identity))
	require.NoError(t, err)
	assert.NotEmpty(t, stored)

	var storedCart domain.Cart
	require.NoError(t, json.Unmarshal([]byte(stored), &storedCart))
	assert.Equal(t, identity, storedCart.Identity)
	assert.Len(t, storedCart.Items, 1)
}

func TestSet_WithTTL(t *testing.T) {
	cache, mr := setupTestRedis(t)
	identity := "guest:ttl-check"

	cart := &domain.Cart{
		Identity: identity,
		Items:    []domain.CartItem{},
	}

	err := cache.Set(context.Background(), identity, cart)
	require.NoError(t, err)

	// Jittered TTL stays within base + max jitter.
	ttl := mr.TTL(cacheKey(identity))
	assert.True(t, ttl >= 15*time.Minute, "TTL should be at least the base TTL")
	assert.True(t, ttl <= 20*time.Minute, "TTL should be base + max jitter")
}

func TestDelete_Success(t *testing.T) {
	cache, mr := setupTestRedis(t)
	identity := "guest:delete-me"

	cart := &domain.Cart{Identity: identity}
	cartJSON, _ := json.Marshal(cart)
	mr.Set(cacheKey(identity), string(cartJSON))
	assert.True(t, mr.Exists(cacheKey(identity)))

	err := cache.Delete(context.Background(), identity)
	require.NoError(t, err)

	assert.False(t, mr.Exists(cacheKey(identity)))
}

func TestDelete_NonExistentKey(t *testing.T) {
	cache, _ := setupTestRedis(t)

	err := cache.Delete(context.Background(), "guest:nonexistent")
	assert.NoError(t, err)
}

func TestCacheKey_Format(t *testing.T) {
	assert.Equal(t, "cart:guest:3f1a9c2e", cacheKey("guest:3f1a9c2e"))
	assert.Equal(t, "cart:user:42", cacheKey("user:42"))
}
