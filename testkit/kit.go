// Package testkit 提供测试用的通用依赖构造器。
package testkit

import (
	"context"
	"testing"
	"time"

	"github.com/ceyewan/bulwark/clog"
)

// NewLogger 返回一个用于测试的 logger
// 输出 console 格式，适合本地调试；创建失败时退化为 Discard
func NewLogger() clog.Logger {
	logger, err := clog.New(&clog.Config{
		Level:  "debug",
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		return clog.Discard()
	}
	return logger
}

// NewContext 返回一个带有超时的测试上下文
// 生命周期由 t.Cleanup 管理
func NewContext(t *testing.T, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}
