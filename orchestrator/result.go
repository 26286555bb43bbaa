package orchestrator

import (
	"github.com/ceyewan/bulwark/breaker"
	"github.com/ceyewan/bulwark/ttlcache"
)

// Source 结果数据来源，标识降级链路命中的层级
type Source string

const (
	// SourcePrimary 上游实时数据
	SourcePrimary Source = "primary"
	// SourceWarmCache 热缓存（短 TTL）
	SourceWarmCache Source = "warm_cache"
	// SourceHistoricalCache 历史缓存（长 TTL），记录可能过期
	SourceHistoricalCache Source = "historical_cache"
	// SourceModelFallback 由查询条件确定性推算的近似数据
	SourceModelFallback Source = "model_fallback"
	// SourceSyntheticFallback 固定占位数据，最后一级兜底
	SourceSyntheticFallback Source = "synthetic_fallback"
)

// Record 上游结构的单条记录，字段结构由上游决定
type Record = map[string]any

// Query 查询请求
type Query struct {
	// Location 查询地域，参与缓存键
	Location string `json:"location"`

	// Filters 过滤条件，键序不影响缓存键
	Filters map[string]any `json:"filters,omitempty"`

	// Limit 返回记录数上限，0 表示不限制
	Limit int `json:"limit,omitempty"`
}

// QueryResult 查询结果
//
// Search 的每条路径都以 QueryResult 终结，调用方通过 Source 与
// Warning 识别数据是否降级，不需要处理错误分支。
type QueryResult struct {
	// RequestID 单次查询的追踪标识
	RequestID string `json:"request_id"`

	// Records 结果记录集
	Records []Record `json:"records"`

	// Source 数据来源层级
	Source Source `json:"source"`

	// TotalFound 上游报告的总命中数（缓存结果沿用写入时的值）
	TotalFound int `json:"total_found"`

	// CacheAgeSeconds 缓存结果的条目年龄，仅缓存来源存在
	CacheAgeSeconds *float64 `json:"cache_age_seconds,omitempty"`

	// Warning 降级说明，仅降级来源存在
	Warning string `json:"warning,omitempty"`
}

// HealthSnapshot 聚合健康快照
type HealthSnapshot struct {
	// CircuitBreakers 各熔断器状态，键为依赖名
	CircuitBreakers map[string]breaker.Snapshot `json:"circuit_breakers"`

	// Caches 各缓存统计，键为缓存实例名
	Caches map[string]ttlcache.Stats `json:"caches"`

	// FallbackStats 各降级层级的使用次数，键为 Source 字符串
	FallbackStats map[string]int64 `json:"fallback_stats"`
}
