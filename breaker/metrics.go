package breaker

// Metrics 指标常量定义
const (
	// MetricCallsTotal 调用总数，含被拒绝的调用 (Counter)
	MetricCallsTotal = "breaker_calls_total"

	// MetricSuccessTotal 成功调用数 (Counter)
	MetricSuccessTotal = "breaker_success_total"

	// MetricFailuresTotal 失败调用数 (Counter)
	MetricFailuresTotal = "breaker_failures_total"

	// MetricRejectsTotal 被熔断拒绝的调用数 (Counter)
	MetricRejectsTotal = "breaker_rejects_total"

	// MetricStateChanges 状态变更次数 (Counter)
	MetricStateChanges = "breaker_state_changes_total"

	// MetricCallDuration 调用耗时 (Histogram)
	MetricCallDuration = "breaker_call_duration_seconds"

	// MetricGRPCRequestsTotal gRPC 拦截器请求数 (Counter)
	MetricGRPCRequestsTotal = "breaker_grpc_requests_total"

	// LabelName 依赖名标签
	LabelName = "name"

	// LabelService 服务名标签（gRPC 拦截器）
	LabelService = "service"

	// LabelMethod 方法名标签（gRPC 拦截器）
	LabelMethod = "method"

	// LabelResult 调用结果标签 (success/failure)
	LabelResult = "result"

	// LabelFromState 源状态标签
	LabelFromState = "from_state"

	// LabelToState 目标状态标签
	LabelToState = "to_state"
)
