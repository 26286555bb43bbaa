// Package ttlcache 提供带 TTL 的键值缓存组件，支持内存与 Redis 两种驱动。
//
// ttlcache 面向降级场景设计：未命中是正常结果而不是错误，Get 返回
// (value, ok) 而非 error；Redis 传输故障也降级为未命中并记录告警，
// 不会向调用方抛错。每个实例维护命中、未命中、写入与失效计数，
// 用于健康检查与指标上报。
//
// ## 快速开始
//
//	cache, _ := ttlcache.New(&ttlcache.Config{
//		Name: "warm",
//		TTL:  5 * time.Minute,
//	}, ttlcache.WithLogger(logger))
//
//	cache.Set(ctx, "listings:sf", records)
//	if v, ok := cache.Get(ctx, "listings:sf"); ok {
//		// 命中
//	}
//
// ## 驱动
//
//   - memory: 进程内 map，零依赖，条目惰性过期
//   - redis: 基于 go-redis，条目以 4 倍 TTL 的物理过期时间写入，
//     逻辑过期后 GetAge 仍可读到条目年龄
package ttlcache

import (
	"context"
	"strings"
	"time"

	"github.com/ceyewan/bulwark/clog"
)

// 驱动类型
const (
	// DriverMemory 进程内存驱动
	DriverMemory = "memory"
	// DriverRedis Redis 驱动
	DriverRedis = "redis"
)

// Stats 缓存统计快照
type Stats struct {
	Name          string  `json:"name"`
	TTLSeconds    float64 `json:"ttl_seconds"`
	Hits          int64   `json:"hits"`
	Misses        int64   `json:"misses"`
	Sets          int64   `json:"sets"`
	Invalidations int64   `json:"invalidations"`
	Size          int     `json:"size"`
	HitRate       float64 `json:"hit_rate"`
}

// Cache 缓存核心接口
type Cache interface {
	// Set 写入或覆盖条目，重置其存入时间
	Set(ctx context.Context, key string, value any) error

	// Get 读取条目
	//
	// 条目不存在或已超过 TTL 时返回 (nil, false) 并计入未命中；
	// 过期条目在读取时惰性删除。
	Get(ctx context.Context, key string) (any, bool)

	// GetAge 返回条目自写入以来经过的时间
	//
	// 仅用于诊断：不影响统计计数，也不触发过期删除，
	// 对已逻辑过期但尚未清除的条目仍会返回年龄。
	GetAge(ctx context.Context, key string) (time.Duration, bool)

	// Invalidate 删除单个条目，返回条目是否存在
	Invalidate(ctx context.Context, key string) bool

	// InvalidatePattern 删除键中包含 pattern 子串的所有条目，返回删除数量
	InvalidatePattern(ctx context.Context, pattern string) int

	// Clear 清空全部条目，返回删除数量（统计计数保留）
	Clear(ctx context.Context) (int, error)

	// Stats 返回统计快照
	Stats(ctx context.Context) Stats

	// Close 关闭缓存，释放资源
	// 不会关闭外部传入的 Redis 客户端
	Close() error
}

// Config 缓存配置
type Config struct {
	// Name 缓存实例标识，出现在日志、指标与键前缀中
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// TTL 条目存活时间（默认：5m）
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`

	// Driver 驱动类型 memory|redis（默认：memory）
	Driver string `json:"driver" yaml:"driver" mapstructure:"driver"`

	// Prefix Redis 键前缀（默认："ttlcache"），memory 驱动忽略
	Prefix string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`

	// Serializer 序列化方式 json|msgpack（默认：msgpack），memory 驱动忽略
	Serializer string `json:"serializer" yaml:"serializer" mapstructure:"serializer"`
}

// validate 设置默认值并校验配置
func (c *Config) validate() error {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.TTL == 0 {
		c.TTL = 5 * time.Minute
	}
	if c.TTL < 0 {
		return ErrConfigInvalid
	}
	if c.Driver == "" {
		c.Driver = DriverMemory
	}
	switch strings.ToLower(c.Driver) {
	case DriverMemory, DriverRedis:
		c.Driver = strings.ToLower(c.Driver)
	default:
		return ErrConfigInvalid
	}
	if c.Prefix == "" {
		c.Prefix = "ttlcache"
	}
	if c.Serializer == "" {
		c.Serializer = SerializerMsgpack
	}
	return nil
}

// New 创建缓存实例
//
// 参数:
//   - cfg: 缓存配置
//   - opts: 可选参数 (Logger, Meter, RedisClient)
//
// Driver 为 redis 时必须通过 WithRedisClient 传入客户端。
func New(cfg *Config, opts ...Option) (Cache, error) {
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

	switch cfg.Driver {
	case DriverRedis:
		if opt.redisClient == nil {
			return nil, ErrRedisClientNil
		}
		serializer, err := newSerializer(cfg.Serializer)
		if err != nil {
			return nil, err
		}
		return newRedisCache(cfg, opt.redisClient, serializer, logger, opt.meter), nil
	default:
		return newMemoryCache(cfg, logger, opt.meter), nil
	}
}
