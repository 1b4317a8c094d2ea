package xlog

import (
	"context"
	"sync/atomic"

	"github.com/omeyang/xlogpipe/pkg/observability/xrotate"
)

// RollingFileAppender 按时间周期轮转的文件 appender
//
// 渲染与写入沿用 [WriterAppender]，底层 writer 是 [xrotate.Timed]。
// 布局时间戳和轮转边界判断使用同一个时钟（[WithClock]），测试中可以用
// xclock.Fixed 精确驱动轮转。
//
// 轮转器的内部错误（如过期文件清理失败）不影响写入，交给所属 Logger 的
// OnError 回调；Logger 构建时自动注入。
type RollingFileAppender struct {
	*WriterAppender
	rotator *xrotate.Timed
	onError atomic.Pointer[func(error)]
}

var _ Appender = (*RollingFileAppender)(nil)

// NewRollingFileAppender 创建文件 appender
//
// 参数:
//   - name: appender 名称
//   - dir, prefix: 日志目录与文件名前缀，见 [xrotate.NewTimed]
//   - rotation: 轮转配置（周期、后缀、保留数量、分段大小、时区）
//   - opts: appender 配置，默认布局为不着色的 [TextLayout]
//
// 时钟和轮转回调由 appender 统一设置，rotation 中的 WithTimedClock、
// WithOnRotate 会被覆盖。
func NewRollingFileAppender(name, dir, prefix string, rotation []xrotate.TimedOption, opts ...AppenderOption) (*RollingFileAppender, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	o := buildAppenderOptions(&TextLayout{NoColor: true}, opts)

	a := &RollingFileAppender{}
	recorder := o.recorder
	rotOpts := make([]xrotate.TimedOption, 0, len(rotation)+3)
	rotOpts = append(rotOpts, rotation...)
	rotOpts = append(rotOpts,
		xrotate.WithTimedClock(o.clock),
		xrotate.WithOnRotate(func(_, _ string) {
			recorder.Rotated(context.Background(), name)
		}),
		xrotate.WithTimedOnError(a.reportError),
	)
	rotator, err := xrotate.NewTimed(dir, prefix, rotOpts...)
	if err != nil {
		return nil, err
	}

	a.rotator = rotator
	a.WriterAppender = newWriterAppender(name, rotator, o)
	return a, nil
}

// setOnError 由 Logger 构建时注入错误回调
func (a *RollingFileAppender) setOnError(fn func(error)) {
	if fn != nil {
		a.onError.Store(&fn)
	}
}

func (a *RollingFileAppender) reportError(err error) {
	if fn := a.onError.Load(); fn != nil {
		(*fn)(err)
	}
}

// Filename 返回当前写入的文件路径
func (a *RollingFileAppender) Filename() string {
	return a.rotator.Filename()
}

// Rotator 返回底层轮转器
func (a *RollingFileAppender) Rotator() *xrotate.Timed {
	return a.rotator
}
