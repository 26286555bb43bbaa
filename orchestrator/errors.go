package orchestrator

import "github.com/ceyewan/bulwark/xerrors"

// 错误定义
var (
	// ErrConfigNil 配置为空
	ErrConfigNil = xerrors.New("orchestrator: config is nil")

	// ErrUpstreamNil 上游客户端为空
	ErrUpstreamNil = xerrors.New("orchestrator: upstream client is nil")
)
