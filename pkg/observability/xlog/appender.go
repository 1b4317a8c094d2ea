package xlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/omeyang/xlogpipe/pkg/observability/xclock"
	"github.com/omeyang/xlogpipe/pkg/observability/xmetrics"
	"github.com/omeyang/xlogpipe/pkg/observability/xsampling"
)

// Appender 具名输出端
//
// 每个 appender 自带过滤器和布局，独立决定是否接收记录以及如何渲染。
// 所有实现都必须是并发安全的。
//
// 实现约定：
//   - Enabled 只依赖自身过滤器，不做 I/O
//   - Append 先应用自身过滤器，被拒绝的记录直接返回 nil；Logger 不替 appender 过滤
//   - Close 之后 Append 返回 [ErrClosed]
type Appender interface {
	// Name 返回 appender 名称，同一 Logger 内唯一
	Name() string

	// Enabled 判断 appender 是否会接收该元数据对应的记录
	Enabled(m Metadata) bool

	// Append 渲染并写入一条记录
	Append(ctx context.Context, r Record) error

	// Flush 把缓冲数据推送到底层
	Flush() error

	// Close 刷新并释放资源
	Close() error
}

// Flusher 可刷新的 writer，WriterAppender.Flush 时调用
type Flusher interface {
	Flush() error
}

// syncer *os.File 等支持 Sync 的 writer
type syncer interface {
	Sync() error
}

// =============================================================================
// Appender 选项
// =============================================================================

type appenderOptions struct {
	layout      Layout
	filters     Chain
	clock       xclock.Clock
	recorder    xmetrics.Recorder
	sampler     xsampling.Sampler
	sampleAbove LevelFilter
}

// AppenderOption appender 配置选项
type AppenderOption func(*appenderOptions)

// WithLayout 设置布局
func WithLayout(l Layout) AppenderOption {
	return func(o *appenderOptions) {
		if l != nil {
			o.layout = l
		}
	}
}

// WithFilters 追加 appender 自身的过滤器
func WithFilters(filters ...Filter) AppenderOption {
	return func(o *appenderOptions) {
		o.filters = append(o.filters, filters...)
	}
}

// WithMaxLevel 是 WithFilters(MaxLevel{Ceiling: ceiling}) 的简写
func WithMaxLevel(ceiling LevelFilter) AppenderOption {
	return WithFilters(MaxLevel{Ceiling: ceiling})
}

// WithClock 设置布局使用的时间源，文件 appender 的轮转也使用同一时钟
func WithClock(c xclock.Clock) AppenderOption {
	return func(o *appenderOptions) {
		o.clock = c
	}
}

// WithRecorder 设置指标记录器，记录写入、拒绝次数，文件 appender 还记录轮转次数
func WithRecorder(r xmetrics.Recorder) AppenderOption {
	return func(o *appenderOptions) {
		o.recorder = r
	}
}

// WithSampling 对比 above 更啰嗦的记录按 s 采样，采样器以记录的 Target 作为 key
//
// 采样在 Append 时决定，Enabled 不消耗采样器：对 Enabled 返回 true 的记录，
// Append 仍可能因未被采样而丢弃。不超过 above 的记录不受影响。
//
//	// Debug、Trace 只保留 10%
//	s, _ := xsampling.NewRateSampler(0.1)
//	a := xlog.Stderr(xlog.WithSampling(s, xlog.LevelInfo.Filter()))
func WithSampling(s xsampling.Sampler, above LevelFilter) AppenderOption {
	return func(o *appenderOptions) {
		o.sampler = s
		o.sampleAbove = above
	}
}

func buildAppenderOptions(defaultLayout Layout, opts []AppenderOption) appenderOptions {
	o := appenderOptions{layout: defaultLayout}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	o.clock = xclock.OrSystem(o.clock)
	o.recorder = xmetrics.OrNoop(o.recorder)
	return o
}

// =============================================================================
// WriterAppender
// =============================================================================

// WriterAppender 把渲染结果写入任意 io.Writer
//
// 写入由互斥锁串行化，每条记录对应一次 Write 调用。
// Flush 调用 writer 的 Flush() 或 Sync()（标准输出、标准错误除外）。
// Close 在 writer 实现 io.Closer 时关闭它，标准输出、标准错误不会被关闭。
type WriterAppender struct {
	name        string
	layout      Layout
	filters     Chain
	clock       xclock.Clock
	recorder    xmetrics.Recorder
	sampler     xsampling.Sampler
	sampleAbove LevelFilter

	mu     sync.Mutex
	w      io.Writer
	closed bool
}

var _ Appender = (*WriterAppender)(nil)

// NewWriterAppender 创建写入 w 的 appender
//
// 默认布局为不着色的 [TextLayout]。
func NewWriterAppender(name string, w io.Writer, opts ...AppenderOption) (*WriterAppender, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if w == nil {
		return nil, fmt.Errorf("%w: appender %q", ErrNilWriter, name)
	}
	o := buildAppenderOptions(&TextLayout{NoColor: true}, opts)
	return newWriterAppender(name, w, o), nil
}

func newWriterAppender(name string, w io.Writer, o appenderOptions) *WriterAppender {
	return &WriterAppender{
		name:        name,
		layout:      o.layout,
		filters:     o.filters,
		clock:       o.clock,
		recorder:    o.recorder,
		sampler:     o.sampler,
		sampleAbove: o.sampleAbove,
		w:           w,
	}
}

// Stdout 创建名为 "stdout" 的标准输出 appender，默认着色
func Stdout(opts ...AppenderOption) *WriterAppender {
	return newStdAppender("stdout", os.Stdout, opts)
}

// Stderr 创建名为 "stderr" 的标准错误 appender，默认着色
func Stderr(opts ...AppenderOption) *WriterAppender {
	return newStdAppender("stderr", os.Stderr, opts)
}

func newStdAppender(name string, f *os.File, opts []AppenderOption) *WriterAppender {
	return newWriterAppender(name, f, buildAppenderOptions(&TextLayout{}, opts))
}

// Name 实现 Appender 接口
func (a *WriterAppender) Name() string { return a.name }

// Enabled 实现 Appender 接口
func (a *WriterAppender) Enabled(m Metadata) bool {
	return a.filters.Allows(m)
}

// Append 实现 Appender 接口
//
// 依次应用过滤器和采样，布局渲染在锁外完成，失败时不写入任何字节。
func (a *WriterAppender) Append(ctx context.Context, r Record) error {
	if !a.Enabled(r.Metadata) || !a.sampled(r.Metadata) {
		a.recorder.Rejected(ctx, a.name)
		return nil
	}
	data, err := a.layout.Format(r, a.clock.Now())
	if err != nil {
		return err
	}

	if err := a.write(data); err != nil {
		return err
	}
	a.recorder.Dispatched(ctx, a.name)
	return nil
}

func (a *WriterAppender) sampled(m Metadata) bool {
	if a.sampler == nil || a.sampleAbove.Allows(m.Level) {
		return true
	}
	return a.sampler.ShouldSample(m.Target)
}

func (a *WriterAppender) write(data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	_, err := a.w.Write(data)
	return err
}

// Flush 实现 Appender 接口
func (a *WriterAppender) Flush() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	return a.flushLocked()
}

func (a *WriterAppender) flushLocked() error {
	switch w := a.w.(type) {
	case Flusher:
		return w.Flush()
	case syncer:
		if isStdStream(a.w) {
			// 终端上的 Sync 返回 EINVAL，没有意义
			return nil
		}
		return w.Sync()
	default:
		return nil
	}
}

// Close 实现 Appender 接口，重复调用返回 nil
func (a *WriterAppender) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true

	err := a.flushLocked()
	if c, ok := a.w.(io.Closer); ok && !isStdStream(a.w) {
		err = errors.Join(err, c.Close())
	}
	return err
}

func isStdStream(w io.Writer) bool {
	return w == io.Writer(os.Stdout) || w == io.Writer(os.Stderr)
}
