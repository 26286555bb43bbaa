// Package clog 为 bulwark 提供基于 slog 的结构化日志组件。
//
// 特性：
//   - 抽象接口，不暴露底层实现（slog）
//   - 支持层级命名空间，便于区分组件来源
//   - 零外部依赖（仅依赖 Go 标准库）
//   - 采用函数式选项模式，符合组件库标准
//
// 基本使用：
//
//	logger, _ := clog.New(&clog.Config{
//	    Level:  "info",
//	    Format: "console",
//	    Output: "stdout",
//	})
//	logger.Info("orchestrator ready", clog.String("upstream", "listing-api"))
//
// 组件内部通过 WithNamespace 派生子 Logger：
//
//	brkLogger := logger.WithNamespace("breaker")
package clog

// Logger 日志接口，提供结构化日志记录功能
//
// 支持五个日志级别：Debug、Info、Warn、Error、Fatal。
// Fatal 在记录日志后调用 os.Exit(1)。
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	// With 创建一个带有预设字段的子 Logger，预设字段出现在所有日志中
	With(fields ...Field) Logger

	// WithNamespace 创建一个扩展命名空间的子 Logger
	//
	// 命名空间以 "." 连接并作为 namespace 字段输出：
	//
	//	logger.WithNamespace("orchestrator", "fallback")
	//	// namespace=orchestrator.fallback
	WithNamespace(parts ...string) Logger
}

// New 创建一个新的 Logger 实例
//
// config 为 nil 时使用默认配置（info 级别、console 格式、stdout 输出）。
func New(config *Config, opts ...Option) (Logger, error) {
	if config == nil {
		config = &Config{}
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	return newLogger(config, o)
}
