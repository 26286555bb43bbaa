package ttlcache

import "github.com/ceyewan/bulwark/xerrors"

// 错误定义
var (
	// ErrConfigNil 配置为空
	ErrConfigNil = xerrors.New("ttlcache: config is nil")

	// ErrConfigInvalid 配置非法（未知驱动、负 TTL 等）
	ErrConfigInvalid = xerrors.New("ttlcache: invalid config")

	// ErrRedisClientNil redis 驱动缺少客户端
	ErrRedisClientNil = xerrors.New("ttlcache: redis driver requires a client, use WithRedisClient")

	// ErrSerializerUnknown 未知序列化方式
	ErrSerializerUnknown = xerrors.New("ttlcache: unknown serializer, must be json or msgpack")
)
