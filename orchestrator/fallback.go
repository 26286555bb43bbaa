package orchestrator

import (
	"fmt"
	"math"
	"strconv"
)

// 过滤条件缺省边界，用于模型降级的推算区间
const (
	defaultMinPrice = 500_000
	defaultMaxPrice = 1_500_000
	defaultMinArea  = 50
	defaultMaxArea  = 200
)

// 降级结果的提示文案
const (
	warningStale        = "results served from historical cache and may be outdated"
	warningApproximated = "live data unavailable, results are approximated from query filters"
	warningPlaceholder  = "live data unavailable and nothing cached, placeholder returned"
)

// modelFallback 模型降级：从查询条件确定性推算一组近似记录
//
// 纯函数，不访问任何外部系统；相同查询永远得到相同记录集。
// 价格与面积在请求边界（或缺省边界）之间等距插值。
func modelFallback(q Query, count int) []Record {
	minPrice := floatFilter(q.Filters, "min_price", defaultMinPrice)
	maxPrice := floatFilter(q.Filters, "max_price", defaultMaxPrice)
	if maxPrice < minPrice {
		maxPrice = minPrice
	}
	minArea := floatFilter(q.Filters, "min_area", defaultMinArea)
	maxArea := floatFilter(q.Filters, "max_area", defaultMaxArea)
	if maxArea < minArea {
		maxArea = minArea
	}
	bedrooms := floatFilter(q.Filters, "bedrooms", 0)

	records := make([]Record, 0, count)
	for i := 0; i < count; i++ {
		frac := float64(i+1) / float64(count+1)
		rec := Record{
			"id":           fmt.Sprintf("approx-%d", i+1),
			"location":     q.Location,
			"price":        round2(minPrice + (maxPrice-minPrice)*frac),
			"area_sqm":     round2(minArea + (maxArea-minArea)*frac),
			"approximated": true,
		}
		if bedrooms > 0 {
			rec["bedrooms"] = int(bedrooms)
		}
		records = append(records, rec)
	}
	return records
}

// syntheticFallback 合成降级：固定占位记录，链路的最后一级
func syntheticFallback(q Query) []Record {
	return []Record{{
		"id":          "placeholder-1",
		"location":    q.Location,
		"placeholder": true,
		"note":        "no live or cached data available for this query",
	}}
}

// floatFilter 从过滤条件中提取数值，解析失败时返回缺省值
func floatFilter(filters map[string]any, key string, def float64) float64 {
	switch v := filters[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
