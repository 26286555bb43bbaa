package metrics

// Label 指标标签结构体
// 用于为指标添加维度信息，实现指标的细粒度分组和筛选
//
// 注意避免高基数标签（如查询关键字、请求 ID），它们会拖垮存储端。
type Label struct {
	Key   string
	Value string
}

// L 便捷构造函数，创建一个 Label 实例
//
//	counter.Inc(ctx, metrics.L("source", "warm_cache"))
func L(key, value string) Label {
	return Label{Key: key, Value: value}
}
