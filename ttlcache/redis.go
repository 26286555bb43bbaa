package ttlcache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ceyewan/bulwark/clog"
	"github.com/ceyewan/bulwark/metrics"
)

// housekeepingFactor Redis 物理过期时间相对逻辑 TTL 的倍数
// 逻辑过期后条目仍保留一段时间，供 GetAge 诊断条目年龄
const housekeepingFactor = 4

// redisCache Redis 驱动实现（非导出）
//
// 条目以信封结构序列化存储，信封记录存入时间，逻辑过期
// 由读取侧判断；Redis 侧的物理 TTL 仅作兜底清理。
// 统计计数为进程本地，多实例部署时各实例只反映自身流量。
type redisCache struct {
	cfg        *Config
	client     *redis.Client
	serializer Serializer
	logger     clog.Logger
	meter      metrics.Meter

	hits          atomic.Int64
	misses        atomic.Int64
	sets          atomic.Int64
	invalidations atomic.Int64
}

// envelope 存储信封，携带原始值与存入时间
type envelope struct {
	Value    any       `json:"value" msgpack:"value"`
	StoredAt time.Time `json:"stored_at" msgpack:"stored_at"`
}

// newRedisCache 创建 Redis 缓存实例（内部函数）
func newRedisCache(cfg *Config, client *redis.Client, serializer Serializer, logger clog.Logger, meter metrics.Meter) *redisCache {
	logger.Info("redis cache created",
		clog.String("name", cfg.Name),
		clog.Duration("ttl", cfg.TTL),
		clog.String("prefix", cfg.Prefix),
		clog.String("serializer", cfg.Serializer))

	return &redisCache{
		cfg:        cfg,
		client:     client,
		serializer: serializer,
		logger:     logger,
		meter:      meter,
	}
}

// redisKey 拼接完整 Redis 键：<prefix>:<name>:<key>
func (c *redisCache) redisKey(key string) string {
	return c.cfg.Prefix + ":" + c.cfg.Name + ":" + key
}

func (c *redisCache) Set(ctx context.Context, key string, value any) error {
	data, err := c.serializer.Marshal(envelope{Value: value, StoredAt: time.Now()})
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, c.redisKey(key), data, c.cfg.TTL*housekeepingFactor).Err(); err != nil {
		return err
	}

	c.sets.Add(1)
	c.logger.Debug("cache set", clog.String("name", c.cfg.Name), clog.String("key", key))
	recordCounter(ctx, c.meter, MetricSetsTotal, "Cache sets", 1, c.labels()...)
	return nil
}

func (c *redisCache) Get(ctx context.Context, key string) (any, bool) {
	env, err := c.load(ctx, key)
	if err != nil {
		// 传输故障降级为未命中，调用方走降级链路
		c.logger.Warn("cache read degraded to miss",
			clog.String("name", c.cfg.Name),
			clog.String("key", key),
			clog.Error(err))
		return c.miss(ctx)
	}
	if env == nil {
		return c.miss(ctx)
	}

	if time.Since(env.StoredAt) > c.cfg.TTL {
		// 逻辑过期，物理清理交给 Redis TTL 兜底
		return c.miss(ctx)
	}

	c.hits.Add(1)
	recordCounter(ctx, c.meter, MetricHitsTotal, "Cache hits", 1, c.labels()...)
	return env.Value, true
}

func (c *redisCache) GetAge(ctx context.Context, key string) (time.Duration, bool) {
	env, err := c.load(ctx, key)
	if err != nil || env == nil {
		return 0, false
	}
	return time.Since(env.StoredAt), true
}

// load 读取并解码信封，键不存在时返回 (nil, nil)
func (c *redisCache) load(ctx context.Context, key string) (*envelope, error) {
	data, err := c.client.Get(ctx, c.redisKey(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := c.serializer.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// miss 未命中簿记
func (c *redisCache) miss(ctx context.Context) (any, bool) {
	c.misses.Add(1)
	recordCounter(ctx, c.meter, MetricMissesTotal, "Cache misses", 1, c.labels()...)
	return nil, false
}

func (c *redisCache) Invalidate(ctx context.Context, key string) bool {
	removed, err := c.client.Del(ctx, c.redisKey(key)).Result()
	if err != nil {
		c.logger.Warn("cache invalidate failed",
			clog.String("name", c.cfg.Name),
			clog.String("key", key),
			clog.Error(err))
		return false
	}
	if removed > 0 {
		c.invalidations.Add(removed)
		recordCounter(ctx, c.meter, MetricInvalidationsTotal, "Cache invalidations", float64(removed), c.labels()...)
	}
	return removed > 0
}

func (c *redisCache) InvalidatePattern(ctx context.Context, pattern string) int {
	keys, err := c.scanKeys(ctx, "*"+pattern+"*")
	if err != nil {
		c.logger.Warn("cache pattern scan failed",
			clog.String("name", c.cfg.Name),
			clog.String("pattern", pattern),
			clog.Error(err))
		return 0
	}
	if len(keys) == 0 {
		return 0
	}

	removed, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("cache pattern invalidation failed",
			clog.String("name", c.cfg.Name),
			clog.String("pattern", pattern),
			clog.Error(err))
		return 0
	}

	c.invalidations.Add(removed)
	c.logger.Info("cache pattern invalidation",
		clog.String("name", c.cfg.Name),
		clog.String("pattern", pattern),
		clog.Int("removed", int(removed)))
	recordCounter(ctx, c.meter, MetricInvalidationsTotal, "Cache invalidations", float64(removed), c.labels()...)
	return int(removed)
}

func (c *redisCache) Clear(ctx context.Context) (int, error) {
	keys, err := c.scanKeys(ctx, "*")
	if err != nil {
		return 0, err
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return 0, err
		}
	}

	c.logger.Info("cache cleared",
		clog.String("name", c.cfg.Name),
		clog.Int("removed", len(keys)))
	return len(keys), nil
}

// scanKeys 按 SCAN 遍历本实例前缀下匹配的键，避免阻塞式 KEYS
func (c *redisCache) scanKeys(ctx context.Context, match string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	prefix := c.cfg.Prefix + ":" + c.cfg.Name + ":"
	for {
		batch, next, err := c.client.Scan(ctx, cursor, prefix+match, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

func (c *redisCache) Stats(ctx context.Context) Stats {
	stats := Stats{
		Name:          c.cfg.Name,
		TTLSeconds:    c.cfg.TTL.Seconds(),
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Sets:          c.sets.Load(),
		Invalidations: c.invalidations.Load(),
	}
	if keys, err := c.scanKeys(ctx, "*"); err == nil {
		stats.Size = len(keys)
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}

func (c *redisCache) Close() error {
	// 客户端由调用方注入并管理生命周期
	return nil
}

func (c *redisCache) labels() []metrics.Label {
	return []metrics.Label{
		metrics.L(LabelCache, c.cfg.Name),
		metrics.L(LabelDriver, DriverRedis),
	}
}
