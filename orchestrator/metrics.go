package orchestrator

// Metrics 指标常量定义
const (
	// MetricSearchesTotal 查询总数，按来源分桶 (Counter)
	MetricSearchesTotal = "orchestrator_searches_total"

	// MetricFallbackTotal 降级次数，按层级分桶 (Counter)
	MetricFallbackTotal = "orchestrator_fallback_total"

	// MetricSearchDuration 查询耗时 (Histogram)
	MetricSearchDuration = "orchestrator_search_duration_seconds"

	// LabelSource 数据来源标签
	LabelSource = "source"

	// LabelTier 降级层级标签
	LabelTier = "tier"
)
