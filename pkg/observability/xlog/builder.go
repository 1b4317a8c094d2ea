package xlog

import (
	"errors"
	"fmt"

	"github.com/omeyang/xlogpipe/pkg/observability/xmetrics"
)

// Builder Logger 构建器
//
// first-error-wins：遇到第一个配置错误后，后续 Set/Add 操作被跳过，Build 返回该错误。
// Builder 为一次性使用，Build 之后不可复用。
type Builder struct {
	ceiling   *LevelFilter // SetLevel 设置的上限，Build 时放在 filters 之前
	filters   Chain
	appenders []Appender
	names     map[string]struct{}
	enrich    bool
	addSource bool
	recorder  xmetrics.Recorder
	onError   func(error)
	err       error
}

// New 创建构建器
//
// 默认：没有 Logger 级过滤器（放行一切）、记录调用方位置、不注入 trace 信息。
func New() *Builder {
	return &Builder{
		names:     make(map[string]struct{}),
		addSource: true,
	}
}

// SetLevel 设置 Logger 级的级别上限
//
// 相当于在 Logger 级过滤器链最前面加一个 [MaxLevel]。多次调用以最后一次为准，
// 不影响 AddFilter 添加的过滤器（包括调用方自己添加的 MaxLevel）。
func (b *Builder) SetLevel(ceiling LevelFilter) *Builder {
	if b.err != nil {
		return b
	}
	b.ceiling = &ceiling
	return b
}

// SetLevelString 通过字符串设置 Logger 级的级别上限，支持 "off"
func (b *Builder) SetLevelString(s string) *Builder {
	if b.err != nil {
		return b
	}
	ceiling, err := ParseLevelFilter(s)
	if err != nil {
		b.err = err
		return b
	}
	return b.SetLevel(ceiling)
}

// AddFilter 追加 Logger 级过滤器
func (b *Builder) AddFilter(filters ...Filter) *Builder {
	if b.err != nil {
		return b
	}
	b.filters = append(b.filters, filters...)
	return b
}

// AddAppender 追加 appender，名称在同一 Logger 内必须唯一
func (b *Builder) AddAppender(a Appender) *Builder {
	if b.err != nil {
		return b
	}
	if a == nil {
		b.err = ErrNilAppender
		return b
	}
	name := a.Name()
	if name == "" {
		b.err = ErrEmptyName
		return b
	}
	if _, dup := b.names[name]; dup {
		b.err = fmt.Errorf("%w: %q", ErrDuplicateAppender, name)
		return b
	}
	b.names[name] = struct{}{}
	b.appenders = append(b.appenders, a)
	return b
}

// SetEnrich 是否从 context 中的 OpenTelemetry span 注入 trace_id、span_id
func (b *Builder) SetEnrich(enable bool) *Builder {
	b.enrich = enable
	return b
}

// SetAddSource 是否在便捷方法（Info 等）和 slog Handler 中记录调用方的模块、文件和行号
//
// 关闭后可省去 runtime.Callers 的开销，布局中对应字段为空。
func (b *Builder) SetAddSource(enable bool) *Builder {
	b.addSource = enable
	return b
}

// SetRecorder 设置指标记录器，默认 [xmetrics.Noop]
func (b *Builder) SetRecorder(r xmetrics.Recorder) *Builder {
	b.recorder = r
	return b
}

// SetOnError 设置内部错误回调
//
// appender 写入失败、轮转器内部错误（如过期文件清理失败）时调用。
//
// 注意事项：
//   - 回调在热路径同步执行，应保持轻量
//   - 内置递归保护和 panic 隔离
//   - 轮转器错误在文件锁内上报，回调不得向同一 Logger 写日志
//
// 示例：
//
//	logger, _ := xlog.New().
//		SetOnError(func(err error) {
//			fmt.Fprintln(os.Stderr, "xlog:", err)
//		}).
//		AddAppender(app).
//		Build()
func (b *Builder) SetOnError(fn func(error)) *Builder {
	b.onError = fn
	return b
}

// errorReporter 需要向 Logger 上报内部错误的 appender
type errorReporter interface {
	setOnError(fn func(error))
}

// Build 构建 Logger
//
// 配置错误时关闭已经添加的 appender，并把关闭错误一并返回。
func (b *Builder) Build() (*Logger, error) {
	if b.err != nil {
		return nil, errors.Join(b.err, b.closeAppenders())
	}

	var filters Chain
	if b.ceiling != nil {
		filters = append(filters, MaxLevel{Ceiling: *b.ceiling})
	}
	l := &Logger{
		filters:   append(filters, b.filters...),
		appenders: append([]Appender(nil), b.appenders...),
		enrich:    b.enrich,
		addSource: b.addSource,
		recorder:  xmetrics.OrNoop(b.recorder),
		onError:   b.onError,
	}
	for _, a := range l.appenders {
		if r, ok := a.(errorReporter); ok {
			r.setOnError(l.handleError)
		}
	}
	return l, nil
}

func (b *Builder) closeAppenders() error {
	var errs []error
	for _, a := range b.appenders {
		if err := a.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
