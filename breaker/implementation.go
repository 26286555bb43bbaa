package breaker

import (
	"context"
	"sync"
	"time"

	"github.com/ceyewan/bulwark/clog"
	"github.com/ceyewan/bulwark/metrics"
)

// circuitBreaker 熔断器实现（非导出）
type circuitBreaker struct {
	cfg    *Config
	logger clog.Logger
	meter  metrics.Meter

	mu           sync.Mutex
	state        State
	failureCount int
	successCount int
	totalCalls   int
	lastFailure  time.Time // 零值表示从未失败
	probing      bool      // 半开探测是否在途
}

// newBreaker 创建熔断器实例（内部函数）
// 注意：cfg 已在 New() 中调用 validate() 设置了默认值
func newBreaker(cfg *Config, logger clog.Logger, meter metrics.Meter) *circuitBreaker {
	return &circuitBreaker{
		cfg:    cfg,
		logger: logger,
		meter:  meter,
		state:  StateClosed,
	}
}

// Call 执行受熔断保护的操作
func (b *circuitBreaker) Call(ctx context.Context, op Operation) (any, error) {
	if op == nil {
		return nil, ErrNilOperation
	}

	b.mu.Lock()
	// 被拒绝的调用也计入总数，保证可观测性
	b.totalCalls++

	switch b.state {
	case StateOpen:
		elapsed := time.Since(b.lastFailure)
		if elapsed < b.cfg.RecoveryTimeout {
			remaining := b.cfg.RecoveryTimeout - elapsed
			b.mu.Unlock()

			b.logger.Warn("call rejected, circuit open",
				clog.String("name", b.cfg.Name),
				clog.Duration("retry_after", remaining))
			b.countMetric(ctx, MetricCallsTotal, "Total calls through breaker")
			b.countMetric(ctx, MetricRejectsTotal, "Calls rejected while open")
			return nil, &OpenError{Name: b.cfg.Name, RetryAfter: remaining}
		}

		// 冷却结束，转入半开并放行单个探测调用
		b.state = StateHalfOpen
		b.probing = true

	case StateHalfOpen:
		// 半开探测进行中，其余并发调用一律拒绝
		b.mu.Unlock()

		b.countMetric(ctx, MetricCallsTotal, "Total calls through breaker")
		b.countMetric(ctx, MetricRejectsTotal, "Calls rejected while open")
		return nil, &OpenError{Name: b.cfg.Name}
	}
	b.mu.Unlock()

	b.countMetric(ctx, MetricCallsTotal, "Total calls through breaker")

	start := time.Now()
	result, err := b.invoke(ctx, op)
	b.recordDuration(ctx, time.Since(start))

	if err != nil {
		b.onFailure(ctx, err)
		return nil, err
	}

	b.onSuccess(ctx)
	return result, nil
}

// invoke 在可选的 CallTimeout 约束下执行操作
func (b *circuitBreaker) invoke(ctx context.Context, op Operation) (any, error) {
	if b.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.CallTimeout)
		defer cancel()
	}
	return op(ctx)
}

// onSuccess 成功簿记：清零失败计数，半开探测成功则闭合
func (b *circuitBreaker) onSuccess(ctx context.Context) {
	b.mu.Lock()
	from := b.state
	if b.state == StateHalfOpen {
		b.probing = false
	}
	b.state = StateClosed
	b.failureCount = 0
	b.successCount++
	b.mu.Unlock()

	if from != StateClosed {
		b.logger.Info("circuit breaker recovered",
			clog.String("name", b.cfg.Name),
			clog.String("from", from.String()))
		b.recordStateChange(ctx, from, StateClosed)
	}
	b.countMetric(ctx, MetricSuccessTotal, "Successful calls")
}

// onFailure 失败簿记：递增失败计数，达到阈值或探测失败时打开
func (b *circuitBreaker) onFailure(ctx context.Context, err error) {
	b.mu.Lock()
	b.lastFailure = time.Now()

	if b.state == StateHalfOpen {
		// 探测失败，重新打开并重置冷却计时
		b.probing = false
		b.state = StateOpen
		b.mu.Unlock()

		b.logger.Warn("probe failed, circuit reopened",
			clog.String("name", b.cfg.Name),
			clog.Error(err))
		b.recordStateChange(ctx, StateHalfOpen, StateOpen)
		b.countMetric(ctx, MetricFailuresTotal, "Failed calls")
		return
	}

	b.failureCount++
	opened := false
	if b.state == StateClosed && b.failureCount >= b.cfg.FailureThreshold {
		b.failureCount = b.cfg.FailureThreshold
		b.state = StateOpen
		opened = true
	}
	failures := b.failureCount
	b.mu.Unlock()

	b.logger.Warn("call failed",
		clog.String("name", b.cfg.Name),
		clog.Int("failures", failures),
		clog.Error(err))

	if opened {
		b.logger.Error("circuit breaker opened",
			clog.String("name", b.cfg.Name),
			clog.Int("failure_threshold", b.cfg.FailureThreshold))
		b.recordStateChange(ctx, StateClosed, StateOpen)
	}
	b.countMetric(ctx, MetricFailuresTotal, "Failed calls")
}

// State 获取当前熔断器状态
//
// Open 状态在冷却结束后依然报告 Open，状态迁移发生在下一次 Call。
func (b *circuitBreaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Snapshot 获取状态快照
func (b *circuitBreaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := Snapshot{
		Name:         b.cfg.Name,
		State:        b.state.String(),
		FailureCount: b.failureCount,
		SuccessCount: b.successCount,
		TotalCalls:   b.totalCalls,
	}
	if b.totalCalls > 0 {
		snap.SuccessRate = float64(b.successCount) / float64(b.totalCalls)
	}
	if !b.lastFailure.IsZero() {
		t := b.lastFailure
		snap.LastFailure = &t
	}
	return snap
}

// Reset 强制恢复为 Closed 状态
func (b *circuitBreaker) Reset() {
	b.mu.Lock()
	from := b.state
	b.state = StateClosed
	b.failureCount = 0
	b.lastFailure = time.Time{}
	b.probing = false
	b.mu.Unlock()

	b.logger.Info("circuit breaker reset",
		clog.String("name", b.cfg.Name),
		clog.String("from", from.String()))
}

// countMetric 记录计数器指标
func (b *circuitBreaker) countMetric(ctx context.Context, name, desc string) {
	if b.meter == nil {
		return
	}
	if counter, err := b.meter.Counter(name, desc); err == nil && counter != nil {
		counter.Inc(ctx, metrics.L(LabelName, b.cfg.Name))
	}
}

// recordStateChange 记录状态变更指标
func (b *circuitBreaker) recordStateChange(ctx context.Context, from, to State) {
	if b.meter == nil {
		return
	}
	if counter, err := b.meter.Counter(MetricStateChanges, "Circuit breaker state changes"); err == nil && counter != nil {
		counter.Inc(ctx,
			metrics.L(LabelName, b.cfg.Name),
			metrics.L(LabelFromState, from.String()),
			metrics.L(LabelToState, to.String()))
	}
}

// recordDuration 记录调用耗时指标
func (b *circuitBreaker) recordDuration(ctx context.Context, d time.Duration) {
	if b.meter == nil {
		return
	}
	if histogram, err := b.meter.Histogram(MetricCallDuration, "Call duration", metrics.WithUnit("s")); err == nil && histogram != nil {
		histogram.Record(ctx, d.Seconds(), metrics.L(LabelName, b.cfg.Name))
	}
}
