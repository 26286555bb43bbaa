package ttlcache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ceyewan/bulwark/clog"
	"github.com/ceyewan/bulwark/metrics"
)

// memoryCache 进程内存驱动实现（非导出）
type memoryCache struct {
	cfg    *Config
	logger clog.Logger
	meter  metrics.Meter

	mu      sync.Mutex
	entries map[string]memoryEntry

	hits          int64
	misses        int64
	sets          int64
	invalidations int64
}

type memoryEntry struct {
	value    any
	storedAt time.Time
}

// newMemoryCache 创建内存缓存实例（内部函数）
func newMemoryCache(cfg *Config, logger clog.Logger, meter metrics.Meter) *memoryCache {
	logger.Info("memory cache created",
		clog.String("name", cfg.Name),
		clog.Duration("ttl", cfg.TTL))

	return &memoryCache{
		cfg:     cfg,
		logger:  logger,
		meter:   meter,
		entries: make(map[string]memoryEntry),
	}
}

func (c *memoryCache) Set(ctx context.Context, key string, value any) error {
	c.mu.Lock()
	c.entries[key] = memoryEntry{value: value, storedAt: time.Now()}
	c.sets++
	c.mu.Unlock()

	c.logger.Debug("cache set", clog.String("name", c.cfg.Name), clog.String("key", key))
	recordCounter(ctx, c.meter, MetricSetsTotal, "Cache sets", 1, c.labels()...)
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string) (any, bool) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && time.Since(entry.storedAt) > c.cfg.TTL {
		// 过期条目惰性删除，按未命中处理
		delete(c.entries, key)
		ok = false
	}
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()

	if !ok {
		recordCounter(ctx, c.meter, MetricMissesTotal, "Cache misses", 1, c.labels()...)
		return nil, false
	}
	recordCounter(ctx, c.meter, MetricHitsTotal, "Cache hits", 1, c.labels()...)
	return entry.value, true
}

func (c *memoryCache) GetAge(ctx context.Context, key string) (time.Duration, bool) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()

	if !ok {
		return 0, false
	}
	return time.Since(entry.storedAt), true
}

func (c *memoryCache) Invalidate(ctx context.Context, key string) bool {
	c.mu.Lock()
	_, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
		c.invalidations++
	}
	c.mu.Unlock()

	if ok {
		recordCounter(ctx, c.meter, MetricInvalidationsTotal, "Cache invalidations", 1, c.labels()...)
	}
	return ok
}

func (c *memoryCache) InvalidatePattern(ctx context.Context, pattern string) int {
	c.mu.Lock()
	removed := 0
	for key := range c.entries {
		if strings.Contains(key, pattern) {
			delete(c.entries, key)
			removed++
		}
	}
	c.invalidations += int64(removed)
	c.mu.Unlock()

	if removed > 0 {
		c.logger.Info("cache pattern invalidation",
			clog.String("name", c.cfg.Name),
			clog.String("pattern", pattern),
			clog.Int("removed", removed))
		recordCounter(ctx, c.meter, MetricInvalidationsTotal, "Cache invalidations", float64(removed), c.labels()...)
	}
	return removed
}

func (c *memoryCache) Clear(ctx context.Context) (int, error) {
	c.mu.Lock()
	count := len(c.entries)
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()

	c.logger.Info("cache cleared",
		clog.String("name", c.cfg.Name),
		clog.Int("removed", count))
	return count, nil
}

func (c *memoryCache) Stats(ctx context.Context) Stats {
	c.mu.Lock()
	// 统计时顺带清理过期条目，保证 Size 只计存活条目
	now := time.Now()
	for key, entry := range c.entries {
		if now.Sub(entry.storedAt) > c.cfg.TTL {
			delete(c.entries, key)
		}
	}
	stats := Stats{
		Name:          c.cfg.Name,
		TTLSeconds:    c.cfg.TTL.Seconds(),
		Hits:          c.hits,
		Misses:        c.misses,
		Sets:          c.sets,
		Invalidations: c.invalidations,
		Size:          len(c.entries),
	}
	c.mu.Unlock()

	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}

func (c *memoryCache) Close() error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) labels() []metrics.Label {
	return []metrics.Label{
		metrics.L(LabelCache, c.cfg.Name),
		metrics.L(LabelDriver, DriverMemory),
	}
}
