package xlog

import (
	"context"
	"log/slog"
	"slices"
)

// Handler 把 Logger 适配为 slog.Handler
//
// 使 slog.New(xlog.NewHandler(logger)) 产生的记录也经过同一套过滤器、appender 和布局。
// slog 级别按 [FromSlog] 映射；WithGroup 之后的属性以嵌套分组的形式传入记录，
// 由布局展开为 "group.key"。
type Handler struct {
	logger *Logger
	target string
	attrs  []slog.Attr // 已按 groups 包装好的预置属性
	groups []string
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler 创建 slog.Handler，记录的 Target 取调用方包路径
//
// Enabled 在源码位置解析之前调用，只能看到 WithTarget 设置的 Target；
// 按 Target 过滤的 Logger 应配合 WithTarget 使用。
func NewHandler(l *Logger) *Handler {
	return &Handler{logger: l}
}

// WithTarget 返回固定 Target 的副本，用于按来源过滤
func (h *Handler) WithTarget(target string) *Handler {
	h2 := *h
	h2.target = target
	return &h2
}

// Enabled 实现 slog.Handler 接口
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.Enabled(Metadata{Level: FromSlog(level), Target: h.target})
}

// Handle 实现 slog.Handler 接口
func (h *Handler) Handle(ctx context.Context, sr slog.Record) error {
	attrs := make([]slog.Attr, 0, sr.NumAttrs())
	sr.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	r := Record{
		Metadata: Metadata{Level: FromSlog(sr.Level), Target: h.target},
		Message:  sr.Message,
	}
	r.Attrs = append(slices.Clip(h.attrs), wrapGroups(h.groups, attrs)...)
	if h.logger.addSource {
		r = r.withSource(sr.PC)
	}
	return h.logger.Log(ctx, r)
}

// WithAttrs 实现 slog.Handler 接口
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	h2.attrs = append(slices.Clip(h.attrs), wrapGroups(h.groups, attrs)...)
	return &h2
}

// WithGroup 实现 slog.Handler 接口
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(slices.Clip(h.groups), name)
	return &h2
}

// wrapGroups 把 attrs 由内向外包进 groups 指定的嵌套分组
func wrapGroups(groups []string, attrs []slog.Attr) []slog.Attr {
	if len(groups) == 0 || len(attrs) == 0 {
		return attrs
	}
	a := slog.Attr{Key: groups[len(groups)-1], Value: slog.GroupValue(attrs...)}
	for i := len(groups) - 2; i >= 0; i-- {
		a = slog.Attr{Key: groups[i], Value: slog.GroupValue(a)}
	}
	return []slog.Attr{a}
}
