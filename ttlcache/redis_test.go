package ttlcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/bulwark/testkit"
)

func newTestRedisCache(t *testing.T, ttl time.Duration) (Cache, *miniredis.Miniredis) {
	t.Helper()

	mr, client := testkit.NewMiniRedis(t)
	cache, err := New(&Config{
		Name:       "test",
		TTL:        ttl,
		Driver:     DriverRedis,
		Serializer: SerializerJSON,
	}, WithRedisClient(client))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

func TestRedisCacheBasic(t *testing.T) {
	ctx := context.Background()

	t.Run("命中返回反序列化值", func(t *testing.T) {
		cache, _ := newTestRedisCache(t, time.Minute)
		require.NoError(t, cache.Set(ctx, "listings:sf", []string{"a", "b"}))

		v, ok := cache.Get(ctx, "listings:sf")
		require.True(t, ok)
		assert.Equal(t, []any{"a", "b"}, v)
	})

	t.Run("未命中不是错误", func(t *testing.T) {
		cache, _ := newTestRedisCache(t, time.Minute)

		v, ok := cache.Get(ctx, "absent")
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("键带实例前缀", func(t *testing.T) {
		cache, mr := newTestRedisCache(t, time.Minute)
		require.NoError(t, cache.Set(ctx, "k", "v"))

		assert.True(t, mr.Exists("ttlcache:test:k"))
	})

	t.Run("物理过期时间为逻辑 TTL 的倍数", func(t *testing.T) {
		cache, mr := newTestRedisCache(t, time.Minute)
		require.NoError(t, cache.Set(ctx, "k", "v"))

		assert.Equal(t, housekeepingFactor*time.Minute, mr.TTL("ttlcache:test:k"))
	})
}

func TestRedisCacheLogicalExpiry(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestRedisCache(t, 50*time.Millisecond)

	require.NoError(t, cache.Set(ctx, "k", "v"))
	time.Sleep(70 * time.Millisecond)

	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok, "逻辑过期的条目应按未命中处理")

	// 物理条目尚在，GetAge 仍能读到年龄
	age, ok := cache.GetAge(ctx, "k")
	require.True(t, ok)
	assert.GreaterOrEqual(t, age, 70*time.Millisecond)
}

func TestRedisCacheInvalidate(t *testing.T) {
	ctx := context.Background()

	t.Run("单键删除", func(t *testing.T) {
		cache, _ := newTestRedisCache(t, time.Minute)
		require.NoError(t, cache.Set(ctx, "k", "v"))

		assert.True(t, cache.Invalidate(ctx, "k"))
		assert.False(t, cache.Invalidate(ctx, "k"))
	})

	t.Run("按子串批量删除", func(t *testing.T) {
		cache, _ := newTestRedisCache(t, time.Minute)
		require.NoError(t, cache.Set(ctx, "listings:sf:page1", 1))
		require.NoError(t, cache.Set(ctx, "listings:sf:page2", 2))
		require.NoError(t, cache.Set(ctx, "listings:nyc:page1", 3))

		assert.Equal(t, 2, cache.InvalidatePattern(ctx, ":sf:"))

		_, ok := cache.Get(ctx, "listings:nyc:page1")
		assert.True(t, ok)
	})

	t.Run("清空只影响本实例前缀", func(t *testing.T) {
		cache, mr := newTestRedisCache(t, time.Minute)
		require.NoError(t, cache.Set(ctx, "a", 1))
		require.NoError(t, mr.Set("other:key", "kept"))

		removed, err := cache.Clear(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		_, ok := cache.Get(ctx, "a")
		assert.False(t, ok)
		assert.True(t, mr.Exists("other:key"), "Clear 不应越过自身前缀")
	})
}

func TestRedisCacheDegradesOnTransportError(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestRedisCache(t, time.Minute)
	require.NoError(t, cache.Set(ctx, "k", "v"))

	// 连接断开后读取降级为未命中，不 panic 不抛错
	mr.Close()

	v, ok := cache.Get(ctx, "k")
	assert.False(t, ok)
	assert.Nil(t, v)

	assert.Zero(t, cache.InvalidatePattern(ctx, "k"))

	stats := cache.Stats(ctx)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestRedisCacheStats(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestRedisCache(t, time.Minute)

	require.NoError(t, cache.Set(ctx, "a", 1))
	cache.Get(ctx, "a")
	cache.Get(ctx, "absent")

	stats := cache.Stats(ctx)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, 1, stats.Size)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
}
