package ttlcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryCache(t *testing.T, ttl time.Duration) Cache {
	t.Helper()
	cache, err := New(&Config{Name: "test", TTL: ttl})
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestMemoryCacheBasic(t *testing.T) {
	ctx := context.Background()

	t.Run("命中返回原值", func(t *testing.T) {
		cache := newTestMemoryCache(t, time.Minute)
		require.NoError(t, cache.Set(ctx, "listings:sf", []string{"a", "b"}))

		v, ok := cache.Get(ctx, "listings:sf")
		require.True(t, ok)
		assert.Equal(t, []string{"a", "b"}, v)
	})

	t.Run("未命中不是错误", func(t *testing.T) {
		cache := newTestMemoryCache(t, time.Minute)

		v, ok := cache.Get(ctx, "absent")
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("覆盖写入重置存入时间", func(t *testing.T) {
		cache := newTestMemoryCache(t, time.Minute)
		require.NoError(t, cache.Set(ctx, "k", "v1"))
		time.Sleep(20 * time.Millisecond)
		require.NoError(t, cache.Set(ctx, "k", "v2"))

		v, ok := cache.Get(ctx, "k")
		require.True(t, ok)
		assert.Equal(t, "v2", v)

		age, ok := cache.GetAge(ctx, "k")
		require.True(t, ok)
		assert.Less(t, age, 20*time.Millisecond)
	})
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	cache := newTestMemoryCache(t, 50*time.Millisecond)

	require.NoError(t, cache.Set(ctx, "k", "v"))

	v, ok := cache.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	time.Sleep(70 * time.Millisecond)

	_, ok = cache.Get(ctx, "k")
	assert.False(t, ok, "过期条目应按未命中处理")

	stats := cache.Stats(ctx)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestMemoryCacheGetAge(t *testing.T) {
	ctx := context.Background()
	cache := newTestMemoryCache(t, 30*time.Millisecond)

	require.NoError(t, cache.Set(ctx, "k", "v"))
	time.Sleep(50 * time.Millisecond)

	// 逻辑过期后 GetAge 仍返回条目年龄，且不触发删除
	age, ok := cache.GetAge(ctx, "k")
	require.True(t, ok)
	assert.GreaterOrEqual(t, age, 50*time.Millisecond)

	age2, ok := cache.GetAge(ctx, "k")
	require.True(t, ok)
	assert.GreaterOrEqual(t, age2, age)

	// GetAge 不影响统计计数
	stats := cache.Stats(ctx)
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Misses)

	_, ok = cache.GetAge(ctx, "absent")
	assert.False(t, ok)
}

func TestMemoryCacheInvalidate(t *testing.T) {
	ctx := context.Background()

	t.Run("单键删除", func(t *testing.T) {
		cache := newTestMemoryCache(t, time.Minute)
		require.NoError(t, cache.Set(ctx, "k", "v"))

		assert.True(t, cache.Invalidate(ctx, "k"))
		assert.False(t, cache.Invalidate(ctx, "k"), "重复删除应返回 false")

		_, ok := cache.Get(ctx, "k")
		assert.False(t, ok)
	})

	t.Run("按子串批量删除", func(t *testing.T) {
		cache := newTestMemoryCache(t, time.Minute)
		require.NoError(t, cache.Set(ctx, "listings:sf:page1", 1))
		require.NoError(t, cache.Set(ctx, "listings:sf:page2", 2))
		require.NoError(t, cache.Set(ctx, "listings:nyc:page1", 3))

		removed := cache.InvalidatePattern(ctx, ":sf:")
		assert.Equal(t, 2, removed)

		_, ok := cache.Get(ctx, "listings:nyc:page1")
		assert.True(t, ok, "不匹配的键应保留")

		assert.Zero(t, cache.InvalidatePattern(ctx, ":sf:"))
	})

	t.Run("清空保留统计", func(t *testing.T) {
		cache := newTestMemoryCache(t, time.Minute)
		require.NoError(t, cache.Set(ctx, "a", 1))
		require.NoError(t, cache.Set(ctx, "b", 2))
		cache.Get(ctx, "a")

		removed, err := cache.Clear(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		stats := cache.Stats(ctx)
		assert.Zero(t, stats.Size)
		assert.Equal(t, int64(2), stats.Sets, "Clear 不应清零写入计数")
		assert.Equal(t, int64(1), stats.Hits)
	})
}

func TestMemoryCacheStats(t *testing.T) {
	ctx := context.Background()
	cache := newTestMemoryCache(t, time.Minute)

	require.NoError(t, cache.Set(ctx, "a", 1))
	cache.Get(ctx, "a")
	cache.Get(ctx, "a")
	cache.Get(ctx, "absent")

	stats := cache.Stats(ctx)
	assert.Equal(t, "test", stats.Name)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
	assert.InDelta(t, 2.0/3.0, stats.HitRate, 1e-9)
}

func TestNewConfigValidation(t *testing.T) {
	t.Run("nil 配置", func(t *testing.T) {
		_, err := New(nil)
		assert.ErrorIs(t, err, ErrConfigNil)
	})

	t.Run("未知驱动", func(t *testing.T) {
		_, err := New(&Config{Driver: "memcached"})
		assert.ErrorIs(t, err, ErrConfigInvalid)
	})

	t.Run("redis 驱动缺少客户端", func(t *testing.T) {
		_, err := New(&Config{Driver: DriverRedis})
		assert.ErrorIs(t, err, ErrRedisClientNil)
	})

	t.Run("默认值", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, cfg.validate())
		assert.Equal(t, "default", cfg.Name)
		assert.Equal(t, 5*time.Minute, cfg.TTL)
		assert.Equal(t, DriverMemory, cfg.Driver)
		assert.Equal(t, SerializerMsgpack, cfg.Serializer)
	})
}
