// Package orchestrator 提供容错查询编排器，是 bulwark 弹性链路的根组件。
//
// 编排器把一个易抖动的上游数据源包装成永不报错的查询接口：上游调用
// 经过熔断器保护，失败后沿固定的降级链路逐级回退——
//
//	上游实时数据 → 热缓存 → 历史缓存 → 模型近似 → 合成占位
//
// 每条路径都以 QueryResult 终结，Search 对调用方永不返回错误；
// 数据是否降级通过 Source 与 Warning 字段表达。上游成功时结果
// 同时回填热缓存与历史缓存。
//
// ## 快速开始
//
//	upstream, _ := orchestrator.NewHTTPUpstream(&orchestrator.HTTPUpstreamConfig{
//		BaseURL: "http://listings.internal:8080",
//	})
//
//	orch, _ := orchestrator.New(upstream, &orchestrator.Config{
//		Breaker: breaker.Config{Name: "listing-api", FailureThreshold: 3},
//	}, orchestrator.WithLogger(logger), orchestrator.WithMeter(meter))
//
//	result := orch.Search(ctx, orchestrator.Query{
//		Location: "san francisco",
//		Filters:  map[string]any{"max_price": 900_000},
//		Limit:    10,
//	})
//
// ## 生命周期
//
// 编排器在服务启动时显式构造一次，被全部请求处理协程共享，
// 所有操作并发安全；服务退出时调用 Close 释放资源。
package orchestrator

import (
	"context"
	"time"

	"github.com/ceyewan/bulwark/breaker"
	"github.com/ceyewan/bulwark/clog"
	"github.com/ceyewan/bulwark/ttlcache"
)

// Orchestrator 容错查询编排器接口
type Orchestrator interface {
	// Search 执行查询
	//
	// 任何上游状态下都返回非 nil 的 QueryResult，永不返回错误；
	// 降级路径通过结果的 Source 与 Warning 字段表达。
	Search(ctx context.Context, q Query) *QueryResult

	// HealthStatus 返回聚合健康快照（熔断器状态 + 缓存统计 + 降级计数）
	HealthStatus(ctx context.Context) HealthSnapshot

	// ResetCircuitBreakers 强制恢复全部熔断器，幂等
	// 用于运维人员确认上游已恢复后的手动干预
	ResetCircuitBreakers()

	// ClearCaches 清空全部缓存，幂等
	ClearCaches(ctx context.Context) error

	// Close 关闭编排器，释放缓存资源
	Close() error
}

// Config 编排器配置
type Config struct {
	// Breaker 上游熔断器配置
	Breaker breaker.Config `json:"breaker" yaml:"breaker" mapstructure:"breaker"`

	// WarmCache 热缓存配置（默认：name=warm, ttl=5m）
	WarmCache ttlcache.Config `json:"warm_cache" yaml:"warm_cache" mapstructure:"warm_cache"`

	// HistoricalCache 历史缓存配置（默认：name=historical, ttl=24h）
	HistoricalCache ttlcache.Config `json:"historical_cache" yaml:"historical_cache" mapstructure:"historical_cache"`

	// FallbackRecords 模型降级生成的记录数（默认：5）
	FallbackRecords int `json:"fallback_records" yaml:"fallback_records" mapstructure:"fallback_records"`
}

// validate 设置默认值
func (c *Config) validate() {
	if c.WarmCache.Name == "" {
		c.WarmCache.Name = "warm"
	}
	if c.WarmCache.TTL == 0 {
		c.WarmCache.TTL = 5 * time.Minute
	}
	if c.HistoricalCache.Name == "" {
		c.HistoricalCache.Name = "historical"
	}
	if c.HistoricalCache.TTL == 0 {
		c.HistoricalCache.TTL = 24 * time.Hour
	}
	if c.FallbackRecords == 0 {
		c.FallbackRecords = 5
	}
}

// New 创建编排器实例
//
// 参数:
//   - upstream: 上游数据源客户端
//   - cfg: 编排器配置
//   - opts: 可选参数 (Logger, Meter, RedisClient)
func New(upstream UpstreamClient, cfg *Config, opts ...Option) (Orchestrator, error) {
	if upstream == nil {
		return nil, ErrUpstreamNil
	}
	if cfg == nil {
		return nil, ErrConfigNil
	}
	cfg.validate()

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}

	logger := opt.logger
	if logger == nil {
		logger = clog.Discard()
	}

	brk, err := breaker.New(&cfg.Breaker,
		breaker.WithLogger(logger),
		breaker.WithMeter(opt.meter))
	if err != nil {
		return nil, err
	}

	cacheOpts := []ttlcache.Option{
		ttlcache.WithLogger(logger),
		ttlcache.WithMeter(opt.meter),
	}
	if opt.redisClient != nil {
		cacheOpts = append(cacheOpts, ttlcache.WithRedisClient(opt.redisClient))
	}

	warm, err := ttlcache.New(&cfg.WarmCache, cacheOpts...)
	if err != nil {
		return nil, err
	}
	historical, err := ttlcache.New(&cfg.HistoricalCache, cacheOpts...)
	if err != nil {
		warm.Close()
		return nil, err
	}

	logger.Info("orchestrator created",
		clog.String("breaker", cfg.Breaker.Name),
		clog.Duration("warm_ttl", cfg.WarmCache.TTL),
		clog.Duration("historical_ttl", cfg.HistoricalCache.TTL))

	return newOrchestrator(cfg, upstream, brk, warm, historical, logger, opt.meter), nil
}
