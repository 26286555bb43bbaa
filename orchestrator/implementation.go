package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ceyewan/bulwark/breaker"
	"github.com/ceyewan/bulwark/clog"
	"github.com/ceyewan/bulwark/metrics"
	"github.com/ceyewan/bulwark/ttlcache"
	"github.com/ceyewan/bulwark/xerrors"
)

// resilientOrchestrator 编排器实现（非导出）
type resilientOrchestrator struct {
	cfg        *Config
	upstream   UpstreamClient
	brk        breaker.Breaker
	warm       ttlcache.Cache
	historical ttlcache.Cache
	logger     clog.Logger
	meter      metrics.Meter

	mu            sync.Mutex
	fallbackStats map[string]int64
}

// newOrchestrator 创建编排器实例（内部函数）
func newOrchestrator(cfg *Config, upstream UpstreamClient, brk breaker.Breaker, warm, historical ttlcache.Cache, logger clog.Logger, meter metrics.Meter) *resilientOrchestrator {
	return &resilientOrchestrator{
		cfg:           cfg,
		upstream:      upstream,
		brk:           brk,
		warm:          warm,
		historical:    historical,
		logger:        logger,
		meter:         meter,
		fallbackStats: make(map[string]int64),
	}
}

// Search 执行查询，沿降级链路保证每条路径都以结果终结
func (o *resilientOrchestrator) Search(ctx context.Context, q Query) *QueryResult {
	start := time.Now()
	requestID := uuid.NewString()
	key := cacheKey(q)

	result := o.search(ctx, q, key)
	result.RequestID = requestID

	o.logger.Info("search completed",
		clog.String("request_id", requestID),
		clog.String("key", key),
		clog.String("source", string(result.Source)),
		clog.Int("records", len(result.Records)),
		clog.Duration("elapsed", time.Since(start)))
	o.recordSearch(ctx, result.Source, time.Since(start))
	return result
}

func (o *resilientOrchestrator) search(ctx context.Context, q Query, key string) *QueryResult {
	// 第一级：经熔断器调用上游
	value, err := o.brk.Call(ctx, func(ctx context.Context) (any, error) {
		records, total, err := o.upstream.Search(ctx, q.Location, q.Filters, q.Limit)
		if err != nil {
			return nil, err
		}
		return encodePayload(records, total), nil
	})
	if err == nil {
		records, total, ok := decodePayload(value)
		if ok {
			o.backfill(ctx, key, value)
			return &QueryResult{
				Records:    records,
				Source:     SourcePrimary,
				TotalFound: total,
			}
		}
		// 上游返回了无法识别的载荷，按失败处理走降级
		err = xerrors.New("orchestrator: malformed upstream payload")
	}

	var open *breaker.OpenError
	if xerrors.As(err, &open) {
		o.logger.Warn("primary rejected by circuit breaker",
			clog.String("key", key),
			clog.Duration("retry_after", open.RetryAfter))
	} else {
		o.logger.Warn("primary failed, falling back",
			clog.String("key", key),
			clog.Error(err))
	}

	// 第二级：热缓存
	if value, ok := o.warm.Get(ctx, key); ok {
		if records, total, ok := decodePayload(value); ok {
			age := o.cacheAge(ctx, o.warm, key)
			o.countFallback(ctx, SourceWarmCache)
			return &QueryResult{
				Records:         limitRecords(records, q.Limit),
				Source:          SourceWarmCache,
				TotalFound:      total,
				CacheAgeSeconds: age,
			}
		}
	}

	// 第三级：历史缓存，记录需标注可能过期
	if value, ok := o.historical.Get(ctx, key); ok {
		if records, total, ok := decodePayload(value); ok {
			age := o.cacheAge(ctx, o.historical, key)
			o.countFallback(ctx, SourceHistoricalCache)
			return &QueryResult{
				Records:         markStale(limitRecords(records, q.Limit), age),
				Source:          SourceHistoricalCache,
				TotalFound:      total,
				CacheAgeSeconds: age,
				Warning:         warningStale,
			}
		}
	}

	// 第四级：模型近似，纯函数必定产出
	count := o.cfg.FallbackRecords
	if q.Limit > 0 && q.Limit < count {
		count = q.Limit
	}
	if records := modelFallback(q, count); len(records) > 0 {
		o.countFallback(ctx, SourceModelFallback)
		return &QueryResult{
			Records:    records,
			Source:     SourceModelFallback,
			TotalFound: len(records),
			Warning:    warningApproximated,
		}
	}

	// 第五级：合成占位，理论不可达的兜底
	records := syntheticFallback(q)
	o.countFallback(ctx, SourceSyntheticFallback)
	return &QueryResult{
		Records:    records,
		Source:     SourceSyntheticFallback,
		TotalFound: len(records),
		Warning:    warningPlaceholder,
	}
}

// backfill 上游成功后同时回填两级缓存
// 缓存写入失败只告警，不影响本次结果
func (o *resilientOrchestrator) backfill(ctx context.Context, key string, value any) {
	if err := o.warm.Set(ctx, key, value); err != nil {
		o.logger.Warn("warm cache backfill failed", clog.String("key", key), clog.Error(err))
	}
	if err := o.historical.Set(ctx, key, value); err != nil {
		o.logger.Warn("historical cache backfill failed", clog.String("key", key), clog.Error(err))
	}
}

// cacheAge 读取缓存条目年龄（秒）
func (o *resilientOrchestrator) cacheAge(ctx context.Context, cache ttlcache.Cache, key string) *float64 {
	age, ok := cache.GetAge(ctx, key)
	if !ok {
		return nil
	}
	seconds := age.Seconds()
	return &seconds
}

// HealthStatus 返回聚合健康快照
func (o *resilientOrchestrator) HealthStatus(ctx context.Context) HealthSnapshot {
	brkSnap := o.brk.Snapshot()

	o.mu.Lock()
	fallback := make(map[string]int64, len(o.fallbackStats))
	for tier, count := range o.fallbackStats {
		fallback[tier] = count
	}
	o.mu.Unlock()

	warmStats := o.warm.Stats(ctx)
	historicalStats := o.historical.Stats(ctx)

	return HealthSnapshot{
		CircuitBreakers: map[string]breaker.Snapshot{brkSnap.Name: brkSnap},
		Caches: map[string]ttlcache.Stats{
			warmStats.Name:       warmStats,
			historicalStats.Name: historicalStats,
		},
		FallbackStats: fallback,
	}
}

// ResetCircuitBreakers 强制恢复全部熔断器
func (o *resilientOrchestrator) ResetCircuitBreakers() {
	o.brk.Reset()
	o.logger.Info("circuit breakers reset by operator")
}

// ClearCaches 清空全部缓存
func (o *resilientOrchestrator) ClearCaches(ctx context.Context) error {
	warmRemoved, warmErr := o.warm.Clear(ctx)
	historicalRemoved, historicalErr := o.historical.Clear(ctx)

	o.logger.Info("caches cleared by operator",
		clog.Int("warm_removed", warmRemoved),
		clog.Int("historical_removed", historicalRemoved))
	return xerrors.Join(warmErr, historicalErr)
}

// Close 释放缓存资源
func (o *resilientOrchestrator) Close() error {
	return xerrors.Join(o.warm.Close(), o.historical.Close())
}

// countFallback 降级层级使用计数
func (o *resilientOrchestrator) countFallback(ctx context.Context, tier Source) {
	o.mu.Lock()
	o.fallbackStats[string(tier)]++
	o.mu.Unlock()

	if o.meter == nil {
		return
	}
	if counter, err := o.meter.Counter(MetricFallbackTotal, "Fallback tier usage"); err == nil && counter != nil {
		counter.Inc(ctx, metrics.L(LabelTier, string(tier)))
	}
}

// recordSearch 查询级指标
func (o *resilientOrchestrator) recordSearch(ctx context.Context, source Source, elapsed time.Duration) {
	if o.meter == nil {
		return
	}
	if counter, err := o.meter.Counter(MetricSearchesTotal, "Total searches by source"); err == nil && counter != nil {
		counter.Inc(ctx, metrics.L(LabelSource, string(source)))
	}
	if histogram, err := o.meter.Histogram(MetricSearchDuration, "Search duration", metrics.WithUnit("s")); err == nil && histogram != nil {
		histogram.Record(ctx, elapsed.Seconds(), metrics.L(LabelSource, string(source)))
	}
}

// encodePayload 组装缓存载荷
// 统一使用 map 结构，保证经任意序列化驱动往返后仍可解码
func encodePayload(records []Record, total int) map[string]any {
	return map[string]any{
		"records":     records,
		"total_found": total,
	}
}

// decodePayload 解码缓存载荷，兼容内存驱动原值与序列化驱动的泛型形态
func decodePayload(v any) ([]Record, int, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, 0, false
	}

	var records []Record
	switch raw := m["records"].(type) {
	case []Record:
		records = raw
	case []any:
		records = make([]Record, 0, len(raw))
		for _, item := range raw {
			rec, ok := item.(map[string]any)
			if !ok {
				return nil, 0, false
			}
			records = append(records, rec)
		}
	case nil:
		records = nil
	default:
		return nil, 0, false
	}

	return records, toInt(m["total_found"]), true
}

// toInt 兼容各序列化驱动还原出的整数形态
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint8:
		return int(n)
	case uint16:
		return int(n)
	case uint32:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// limitRecords 缓存键不含 Limit，读取侧按本次请求截断
func limitRecords(records []Record, limit int) []Record {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}

// markStale 为历史缓存的每条记录标注过期提示与条目年龄
func markStale(records []Record, age *float64) []Record {
	marked := make([]Record, 0, len(records))
	for _, rec := range records {
		copied := make(Record, len(rec)+2)
		for k, v := range rec {
			copied[k] = v
		}
		copied["_stale"] = true
		if age != nil {
			copied["_cache_age_seconds"] = round2(*age)
		}
		marked = append(marked, copied)
	}
	return marked
}
