package orchestrator

import (
	"github.com/redis/go-redis/v9"

	"github.com/ceyewan/bulwark/clog"
	"github.com/ceyewan/bulwark/metrics"
)

// Option 组件初始化选项函数
type Option func(*options)

// options 组件初始化选项配置（内部使用，小写）
type options struct {
	logger      clog.Logger
	meter       metrics.Meter
	redisClient *redis.Client
}

// WithLogger 设置 Logger，传入 nil 时使用 clog.Discard()
// 内部会自动添加 namespace: "orchestrator"
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			o.logger = clog.Discard()
		} else {
			o.logger = logger.WithNamespace("orchestrator")
		}
	}
}

// WithMeter 设置指标收集器，透传给熔断器与两级缓存
func WithMeter(meter metrics.Meter) Option {
	return func(o *options) {
		o.meter = meter
	}
}

// WithRedisClient 设置 Redis 客户端
// 缓存配置的 Driver 为 redis 时必需，透传给对应缓存实例
func WithRedisClient(client *redis.Client) Option {
	return func(o *options) {
		o.redisClient = client
	}
}
