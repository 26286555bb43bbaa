// Package xerrors 提供 bulwark 各组件共享的错误处理工具。
package xerrors

import (
	"errors"
	"fmt"
)

// Wrap 为错误附加上下文信息，保留原始错误链。
// err 为 nil 时返回 nil，可以安全地用在返回路径上。
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf 为错误附加格式化的上下文信息。
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Must 在 err 非 nil 时 panic，仅用于进程初始化阶段。
func Must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Sprintf("must: %v", err))
	}
	return v
}

// 标准库函数再导出，组件内统一通过 xerrors 使用错误原语
var (
	New    = errors.New
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)
