package xlog

import (
	"log/slog"
	"time"
)

// =============================================================================
// 常用属性 Key 常量
// =============================================================================

const (
	// KeyError 错误字段的标准 key
	KeyError = "error"

	// KeyDuration 耗时字段的标准 key
	KeyDuration = "duration"

	// KeyComponent 组件名称字段的标准 key
	KeyComponent = "component"

	// KeyTraceID 追踪 ID，启用 enrich 时自动注入
	KeyTraceID = "trace_id"

	// KeySpanID 跨度 ID，启用 enrich 时自动注入
	KeySpanID = "span_id"
)

// Err 创建错误属性，err 为 nil 时返回空属性（布局会忽略）
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 创建耗时属性，输出人类可读格式（如 "1m30s"）
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Component 创建组件名属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// =============================================================================
// 延迟求值
//
// 布局在渲染时才调用 LogValue()。被过滤器拒绝的记录不会被渲染，
// 昂贵的参数计算也就不会发生。
// =============================================================================

type lazyValue struct {
	fn func() any
}

// LogValue 实现 slog.LogValuer 接口
func (l lazyValue) LogValue() slog.Value {
	return slog.AnyValue(l.fn())
}

// Lazy 返回延迟求值的属性
//
//	logger.Debug(ctx, "request",
//	    xlog.Lazy("body", func() any { return expensiveSerialize(req) }))
func Lazy(key string, fn func() any) slog.Attr {
	if fn == nil {
		return slog.Any(key, nil)
	}
	return slog.Any(key, lazyValue{fn: fn})
}

type lazyGroupValue struct {
	fn func() []slog.Attr
}

// LogValue 实现 slog.LogValuer 接口
func (l lazyGroupValue) LogValue() slog.Value {
	return slog.GroupValue(l.fn()...)
}

// LazyGroup 返回延迟求值的分组属性
func LazyGroup(key string, fn func() []slog.Attr) slog.Attr {
	if fn == nil {
		return slog.Group(key)
	}
	return slog.Any(key, lazyGroupValue{fn: fn})
}
