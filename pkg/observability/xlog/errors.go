package xlog

import "errors"

// 日志分发相关错误
var (
	// ErrFormat 布局渲染失败，该条记录不会写入对应的 appender
	ErrFormat = errors.New("xlog: format record")

	// ErrClosed Logger 或 appender 已关闭
	ErrClosed = errors.New("xlog: closed")

	// ErrNilAppender 向 Builder 添加了 nil appender
	ErrNilAppender = errors.New("xlog: nil appender")

	// ErrNilWriter 创建 WriterAppender 时 writer 为 nil
	ErrNilWriter = errors.New("xlog: nil writer")

	// ErrEmptyName appender 名称为空
	ErrEmptyName = errors.New("xlog: empty appender name")

	// ErrDuplicateAppender 同一 Logger 中 appender 名称重复
	ErrDuplicateAppender = errors.New("xlog: duplicate appender name")

	// ErrAppenderPanic appender 在写入、刷新或关闭时发生 panic
	ErrAppenderPanic = errors.New("xlog: appender panicked")

	// ErrInvalidLevel 无法识别的日志级别
	ErrInvalidLevel = errors.New("xlog: invalid level")

	// ErrInvalidConfig 日志配置不合法
	ErrInvalidConfig = errors.New("xlog: invalid config")
)
