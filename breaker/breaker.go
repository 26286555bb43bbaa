// Package breaker 提供了熔断器组件，用于隔离不稳定的上游依赖并自动恢复。
//
// breaker 是 bulwark 弹性链路的第一道闸门，它提供了：
// - 基于连续失败计数的熔断策略（达到阈值后快速失败）
// - 冷却窗口后的半开探测与自动恢复
// - 运维人员手动 Reset 的强制恢复通道
// - 快照式状态读取（状态、计数、成功率），用于健康检查聚合
// - gRPC Unary/Stream Interceptor 无侵入集成
//
// ## 基本使用
//
//	brk, _ := breaker.New(&breaker.Config{
//		Name:             "listing-api",
//		FailureThreshold: 5,
//		RecoveryTimeout:  30 * time.Second,
//		CallTimeout:      10 * time.Second,
//	}, breaker.WithLogger(logger))
//
//	result, err := brk.Call(ctx, func(ctx context.Context) (any, error) {
//		return client.Search(ctx, location, filters, limit)
//	})
//	if err != nil {
//		var open *breaker.OpenError
//		if xerrors.As(err, &open) {
//			// 熔断中，open.RetryAfter 为剩余冷却时间
//		}
//	}
//
// ## 状态机
//
// Closed 状态下每次失败递增 failureCount，达到 FailureThreshold 后进入
// Open；Open 状态在 RecoveryTimeout 内的调用全部被立即拒绝（不触达上游）；
// 冷却结束后进入 HalfOpen，放行单个探测调用——探测成功回到 Closed 并清零
// 失败计数，探测失败回到 Open 并重新计时。
package breaker

import (
	"context"
	"time"

	"github.com/ceyewan/bulwark/clog"
)

// State 熔断器状态
type State int

const (
	// StateClosed 闭合状态（正常）
	StateClosed State = iota
	// StateHalfOpen 半开状态（探测恢复）
	StateHalfOpen
	// StateOpen 打开状态（熔断中）
	StateOpen
)

// String 返回状态的字符串表示
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half_open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Operation 受熔断保护的操作
// ctx 由 Call 传入，配置了 CallTimeout 时带有截止时间
type Operation func(ctx context.Context) (any, error)

// Breaker 熔断器核心接口
type Breaker interface {
	// Call 执行受熔断保护的操作
	//
	// 熔断打开且冷却未结束时返回 *OpenError（不调用 op）；
	// 其余情况下 op 的结果与错误原样透传，失败会计入状态机。
	Call(ctx context.Context, op Operation) (any, error)

	// State 获取当前熔断器状态
	State() State

	// Snapshot 获取状态快照，包含各类计数与成功率
	Snapshot() Snapshot

	// Reset 强制恢复为 Closed 状态并清零失败计数
	// 用于运维场景的手动恢复，幂等
	Reset()
}

// Snapshot 熔断器状态快照
type Snapshot struct {
	Name         string     `json:"name"`
	State        string     `json:"state"`
	FailureCount int        `json:"failure_count"`
	SuccessCount int        `json:"success_count"`
	TotalCalls   int        `json:"total_calls"`
	SuccessRate  float64    `json:"success_rate"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
}

// Config 熔断器配置
type Config struct {
	// Name 依赖标识，出现在日志、指标与 OpenError 中
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// FailureThreshold 连续失败阈值（默认：5）
	// 达到该值后熔断器打开
	FailureThreshold int `json:"failure_threshold" yaml:"failure_threshold" mapstructure:"failure_threshold"`

	// RecoveryTimeout 打开状态持续时间（默认：30s）
	// 超时后转入半开状态进行探测
	RecoveryTimeout time.Duration `json:"recovery_timeout" yaml:"recovery_timeout" mapstructure:"recovery_timeout"`

	// CallTimeout 单次调用的超时上限（默认：0，不限制）
	// 大于 0 时每次调用在 context.WithTimeout 下执行，
	// 保证失败计数不会被无限挂起的上游拖死
	CallTimeout time.Duration `json:"call_timeout" yaml:"call_timeout" mapstructure:"call_timeout"`
}

// validate 设置默认值并校验配置
func (c *Config) validate() error {
	if c.Name == "" {
		c.Name = "upstream"
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
	if c.RecoveryTimeout == 0 {
		c.RecoveryTimeout = 30 * time.Second
	}
	if c.FailureThreshold < 0 || c.RecoveryTimeout < 0 || c.CallTimeout < 0 {
		return ErrConfigInvalid
	}
	return nil
}

// New 创建熔断器实例
//
// 参数:
//   - cfg: 熔断器配置
//   - opts: 可选参数 (Logger, Meter)
func New(cfg *Config, opts ...Option) (Breaker, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}

	logger := opt.logger
	if logger == nil {
		logger = clog.Discard()
	}

	logger.Info("circuit breaker created",
		clog.String("name", cfg.Name),
		clog.Int("failure_threshold", cfg.FailureThreshold),
		clog.Duration("recovery_timeout", cfg.RecoveryTimeout),
		clog.Duration("call_timeout", cfg.CallTimeout))

	return newBreaker(cfg, logger, opt.meter), nil
}
