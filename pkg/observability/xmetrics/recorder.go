package xmetrics

import "context"

// ScopeLogger Logger 级过滤器拒绝记录时使用的 appender 属性值
const ScopeLogger = "(logger)"

// Recorder 日志管道指标记录接口
//
// 所有方法都在日志热路径上同步调用，实现必须并发安全且不得阻塞。
// 参数 appender 为 appender 名称。
type Recorder interface {
	// Dispatched 记录一条成功写入 appender 的记录
	Dispatched(ctx context.Context, appender string)

	// Rejected 记录一条被过滤器拒绝的记录
	Rejected(ctx context.Context, appender string)

	// AppenderError 记录一次 appender 写入失败
	AppenderError(ctx context.Context, appender string)

	// Rotated 记录一次文件轮转
	Rotated(ctx context.Context, appender string)
}

// noopRecorder 是空实现。
type noopRecorder struct{}

// Noop 返回不做任何事的 Recorder
func Noop() Recorder {
	return noopRecorder{}
}

func (noopRecorder) Dispatched(context.Context, string)    {}
func (noopRecorder) Rejected(context.Context, string)      {}
func (noopRecorder) AppenderError(context.Context, string) {}
func (noopRecorder) Rotated(context.Context, string)       {}

// OrNoop 在 r 为 nil 时返回 [Noop]
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return Noop()
	}
	return r
}
