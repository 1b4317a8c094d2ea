package xrotate

import "io"

// 编译时断言：Rotator 接口是 io.WriteCloser 的超集
var _ io.WriteCloser = (Rotator)(nil)

// Rotator 日志轮转器接口
//
// 隐式实现 [io.WriteCloser]，可直接作为 xlog 文件输出的写入目标。
// 额外提供 Rotate 方法用于手动触发轮转。
// 所有实现都必须是并发安全的。
//
// 实现约定：
//   - Write 在到达轮转条件时自动轮转，同一边界只轮转一次
//   - Close 后调用 Write 或 Rotate 返回 [ErrClosed]
//   - Rotate 可以在任意时刻调用
type Rotator interface {
	Write(p []byte) (n int, err error)

	// Close 关闭当前文件，重复调用返回 [ErrClosed]
	Close() error

	// Rotate 立即关闭当前文件并切换到新文件
	Rotate() error
}

// 编译时接口检查
var _ Rotator = (*Timed)(nil)
