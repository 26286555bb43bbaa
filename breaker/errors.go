package breaker

import (
	"fmt"
	"time"

	"github.com/ceyewan/bulwark/xerrors"
)

// 错误定义
var (
	// ErrConfigNil 配置为空
	ErrConfigNil = xerrors.New("breaker: config is nil")

	// ErrConfigInvalid 配置数值非法
	ErrConfigInvalid = xerrors.New("breaker: threshold and timeouts must be non-negative")

	// ErrNilOperation 操作为空
	ErrNilOperation = xerrors.New("breaker: operation is nil")

	// ErrOpen 熔断器处于打开状态
	// 用于 xerrors.Is 判断；具体的剩余冷却时间在 *OpenError 中
	ErrOpen = xerrors.New("breaker: circuit is open")
)

// OpenError 熔断拒绝错误，携带剩余冷却时间
//
// xerrors.Is(err, ErrOpen) 对 *OpenError 成立。
type OpenError struct {
	// Name 被熔断的依赖标识
	Name string

	// RetryAfter 剩余冷却时间；半开探测已被占用时为 0
	RetryAfter time.Duration
}

func (e *OpenError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("breaker %s: circuit is open, retry after %s", e.Name, e.RetryAfter)
	}
	return fmt.Sprintf("breaker %s: circuit is open, probe in flight", e.Name)
}

func (e *OpenError) Unwrap() error {
	return ErrOpen
}
