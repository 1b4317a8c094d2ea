package xlog

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/omeyang/xlogpipe/pkg/observability/xmetrics"
)

// =============================================================================
// 全局 Logger
//
// 定位：脚手架/小工具等简单场景。
// 在服务端推荐依赖注入（显式持有 *Logger）。
// =============================================================================

// globalLogger 全局 Logger 实例（并发安全）
var globalLogger atomic.Pointer[Logger]

// globalMu 保护 globalOnce 及其 Do 执行（也用于 ResetDefault）
var globalMu sync.Mutex

// globalOnce 确保默认 Logger 只初始化一次
var globalOnce sync.Once

// defaultLogger 创建默认 Logger（惰性初始化）
//
// 设计决策: 在持锁状态下执行 once.Do，确保 ResetDefault（重置 globalOnce）
// 与 once.Do 之间不会发生并发竞争。初始化后 Default() 走 atomic.Load 快速路径。
func defaultLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()

	globalOnce.Do(func() {
		// 默认配置：Info 级别，单个着色的 stderr appender。
		// 直接构造而不经过 Builder，固定参数没有失败路径。
		globalLogger.Store(&Logger{
			filters:   Chain{MaxLevel{Ceiling: LevelInfo.Filter()}},
			appenders: []Appender{Stderr()},
			addSource: true,
			recorder:  xmetrics.Noop(),
		})
	})
	return globalLogger.Load()
}

// Default 返回全局默认 Logger
//
// 懒初始化：首次调用时创建默认 Logger（stderr，Info 级别，text 布局）。
func Default() *Logger {
	if l := globalLogger.Load(); l != nil {
		return l
	}
	return defaultLogger()
}

// SetDefault 替换全局默认 Logger，传入 nil 会被忽略
//
// 被替换的 Logger 不会被关闭，由调用方负责其生命周期。
func SetDefault(l *Logger) {
	if l == nil {
		return
	}
	globalLogger.Store(l)
}

// ResetDefault 重置全局 Logger 为未初始化状态（仅用于测试）
func ResetDefault() {
	globalMu.Lock()
	globalLogger.Store(nil)
	globalOnce = sync.Once{}
	globalMu.Unlock()
}

// =============================================================================
// 便利函数：最小集，强制 ctx
//
// 全局函数比实例方法多一层调用，extraSkip=1。
// =============================================================================

// Error 使用全局 Logger 记录 Error 级别日志
func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logAt(ctx, LevelError, msg, attrs, 1)
}

// Warn 使用全局 Logger 记录 Warn 级别日志
func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logAt(ctx, LevelWarn, msg, attrs, 1)
}

// Info 使用全局 Logger 记录 Info 级别日志
func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logAt(ctx, LevelInfo, msg, attrs, 1)
}

// Debug 使用全局 Logger 记录 Debug 级别日志
func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logAt(ctx, LevelDebug, msg, attrs, 1)
}

// Trace 使用全局 Logger 记录 Trace 级别日志
func Trace(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logAt(ctx, LevelTrace, msg, attrs, 1)
}
