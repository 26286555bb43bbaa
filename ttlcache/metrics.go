package ttlcache

import (
	"context"

	"github.com/ceyewan/bulwark/metrics"
)

// Metrics 指标常量定义
const (
	// MetricHitsTotal 缓存命中数 (Counter)
	MetricHitsTotal = "ttlcache_hits_total"

	// MetricMissesTotal 缓存未命中数 (Counter)
	MetricMissesTotal = "ttlcache_misses_total"

	// MetricSetsTotal 缓存写入数 (Counter)
	MetricSetsTotal = "ttlcache_sets_total"

	// MetricInvalidationsTotal 缓存失效条目数 (Counter)
	MetricInvalidationsTotal = "ttlcache_invalidations_total"

	// LabelCache 缓存实例标签
	LabelCache = "cache"

	// LabelDriver 驱动类型标签
	LabelDriver = "driver"
)

// recordCounter 记录计数器指标（meter 为 nil 时为空操作）
func recordCounter(ctx context.Context, meter metrics.Meter, name, desc string, delta float64, labels ...metrics.Label) {
	if meter == nil {
		return
	}
	if counter, err := meter.Counter(name, desc); err == nil && counter != nil {
		counter.Add(ctx, delta, labels...)
	}
}

