package xmetrics

import "errors"

// NewOTel 返回的错误。
var (
	// ErrCreateCounter 表示创建 OTel Counter 失败。
	ErrCreateCounter = errors.New("xmetrics: create counter failed")
	// ErrNilOption 表示传入了 nil 的 Option 函数。
	ErrNilOption = errors.New("xmetrics: nil option")
)
