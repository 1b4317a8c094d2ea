package xlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/omeyang/xlogpipe/pkg/observability/xmetrics"
)

// Logger 日志分发入口
//
// Logger 持有一组有序的 appender，构建后成员不再变化。
// 一条记录先经过 Logger 级过滤器，通过后分发给每个 appender，
// 由各 appender 的过滤器独立决定是否写入。
//
// Logger 是普通值，没有隐藏的全局状态；全局单例见 [Default]。
// 所有方法并发安全。
type Logger struct {
	filters   Chain
	appenders []Appender
	enrich    bool
	addSource bool
	recorder  xmetrics.Recorder
	onError   func(error)

	errorCount     atomic.Uint64
	inErrorHandler atomic.Bool
	closed         atomic.Bool
}

// Enabled 判断是否有 appender 会接收该元数据对应的记录
//
// Logger 级过滤器拒绝时直接返回 false，不再询问 appender。
func (l *Logger) Enabled(m Metadata) bool {
	if !l.filters.Allows(m) {
		return false
	}
	for _, a := range l.appenders {
		if a.Enabled(m) {
			return true
		}
	}
	return false
}

// Log 分发一条记录
//
// Logger 级过滤器放行后，记录被无条件交给每个 appender，是否写入由 appender
// 自己的过滤器决定。单个 appender 的失败（包括 panic）不会阻止其他 appender 写入。
// 所有失败以 errors.Join 合并返回，同时通知 OnError 回调。
// Logger 级过滤器拒绝的记录返回 nil。
//
// 指标：Logger 记录 Logger 级拒绝和 appender 失败，写入与 appender 级拒绝由 appender 记录。
func (l *Logger) Log(ctx context.Context, r Record) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if l.closed.Load() {
		return ErrClosed
	}
	if !l.filters.Allows(r.Metadata) {
		l.recorder.Rejected(ctx, xmetrics.ScopeLogger)
		return nil
	}
	if l.enrich {
		r = r.withAttrs(traceAttrs(ctx)...)
	}

	var errs []error
	for _, a := range l.appenders {
		if err := safeAppend(ctx, a, r); err != nil {
			l.recorder.AppenderError(ctx, a.Name())
			errs = append(errs, fmt.Errorf("appender %q: %w", a.Name(), err))
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		l.handleError(err)
	}
	return err
}

// safeAppend 隔离 appender panic，转为 [ErrAppenderPanic] 错误
func safeAppend(ctx context.Context, a Appender, r Record) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrAppenderPanic, p)
		}
	}()
	return a.Append(ctx, r)
}

// Flush 刷新所有 appender
//
// 一个 appender 失败不会阻止其他 appender 刷新，所有失败合并返回。
func (l *Logger) Flush() error {
	return l.each("flush", Appender.Flush)
}

// Close 刷新并关闭所有 appender
//
// 重复调用返回 nil。关闭后 Log 返回 [ErrClosed]。
func (l *Logger) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	return l.each("close", Appender.Close)
}

func (l *Logger) each(op string, fn func(Appender) error) error {
	var errs []error
	for _, a := range l.appenders {
		if err := safeCall(a, fn); err != nil {
			errs = append(errs, fmt.Errorf("%s appender %q: %w", op, a.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func safeCall(a Appender, fn func(Appender) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrAppenderPanic, p)
		}
	}()
	return fn(a)
}

// Appenders 返回 appender 列表的副本
func (l *Logger) Appenders() []Appender {
	out := make([]Appender, len(l.appenders))
	copy(out, l.appenders)
	return out
}

// ErrorCount 返回内部错误累计次数（appender 失败、轮转器内部错误、回调 panic）
func (l *Logger) ErrorCount() uint64 {
	return l.errorCount.Load()
}

// handleError 处理内部错误
//
// 内置递归保护：如果 onError 回调内部触发日志错误，不会导致无限递归。
// 内置 panic 隔离：回调 panic 不会扩散到业务调用链。
//
// 设计决策: CAS 保护导致并发期间部分错误跳过 onError 回调，errorCount 仍计入所有错误，
// onError 回调定位为 best-effort 通知。
func (l *Logger) handleError(err error) {
	l.errorCount.Add(1)
	if l.onError == nil {
		return
	}
	if l.inErrorHandler.CompareAndSwap(false, true) {
		defer l.inErrorHandler.Store(false)
		l.safeOnError(err)
	}
}

func (l *Logger) safeOnError(err error) {
	defer func() {
		if r := recover(); r != nil {
			l.errorCount.Add(1)
		}
	}()
	l.onError(err)
}

// =============================================================================
// 便捷方法
// =============================================================================

// logAt 捕获调用方位置并分发，错误只通过 OnError 回调上报
//
// extraSkip: 额外需要跳过的栈帧数（用于全局函数等间接调用场景）
//
//go:noinline
func (l *Logger) logAt(ctx context.Context, level Level, msg string, attrs []slog.Attr, extraSkip int) {
	r := Record{Metadata: Metadata{Level: level}, Message: msg, Attrs: attrs}
	if l.addSource {
		var pcs [1]uintptr
		// skip=3: runtime.Callers → logAt → Info 等 → 业务代码
		runtime.Callers(3+extraSkip, pcs[:])
		r = r.withSource(pcs[0])
	}
	_ = l.Log(ctx, r)
}

// Error 记录 Error 级别日志
func (l *Logger) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logAt(ctx, LevelError, msg, attrs, 0)
}

// Warn 记录 Warn 级别日志
func (l *Logger) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logAt(ctx, LevelWarn, msg, attrs, 0)
}

// Info 记录 Info 级别日志
func (l *Logger) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logAt(ctx, LevelInfo, msg, attrs, 0)
}

// Debug 记录 Debug 级别日志
func (l *Logger) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logAt(ctx, LevelDebug, msg, attrs, 0)
}

// Trace 记录 Trace 级别日志
func (l *Logger) Trace(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logAt(ctx, LevelTrace, msg, attrs, 0)
}
