package xrotate

import "errors"

// 配置校验错误
var (
	// ErrEmptyDir 日志目录为空
	ErrEmptyDir = errors.New("xrotate: directory is required")

	// ErrEmptyPrefix 文件名前缀为空
	ErrEmptyPrefix = errors.New("xrotate: filename prefix is required")

	// ErrInvalidPrefix 文件名前缀包含路径分隔符
	ErrInvalidPrefix = errors.New("xrotate: invalid filename prefix")

	// ErrInvalidPeriod 未定义的轮转周期
	ErrInvalidPeriod = errors.New("xrotate: invalid period")

	// ErrInvalidMaxSize 单个分段大小无效（必须在 0~10240 范围内，0 表示 lumberjack 默认值）
	ErrInvalidMaxSize = errors.New("xrotate: invalid segment MaxSizeMB")

	// ErrInvalidMaxFiles 保留文件数量无效（必须在 0~1024 范围内）
	ErrInvalidMaxFiles = errors.New("xrotate: invalid MaxFiles")

	// ErrPruneFailed 清理过期周期文件失败（只通过 OnError 回调上报，不影响写入）
	ErrPruneFailed = errors.New("xrotate: prune old files failed")

	// ErrClosed 轮转器已关闭
	ErrClosed = errors.New("xrotate: rotator is closed")
)
