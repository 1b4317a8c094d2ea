package xlog

import (
	"log/slog"
	"runtime"
	"strings"
)

// Metadata 过滤器判断所需的最小信息
type Metadata struct {
	Level Level

	// Target 日志来源，默认是调用方的包路径
	Target string
}

// Record 一条日志记录
//
// Record 由调用方构造后只读传递，过滤器、appender 和布局都不会修改它。
// Module、File 为空或 Line 为 0 表示调用方没有提供对应信息。
type Record struct {
	Metadata

	Message string
	Attrs   []slog.Attr

	Module string
	File   string
	Line   int
}

// NewRecord 创建不带源码位置的记录
func NewRecord(level Level, target, msg string, attrs ...slog.Attr) Record {
	return Record{
		Metadata: Metadata{Level: level, Target: target},
		Message:  msg,
		Attrs:    attrs,
	}
}

// withAttrs 返回追加了 attrs 的副本，原记录的 Attrs 底层数组不会被改写
func (r Record) withAttrs(attrs ...slog.Attr) Record {
	if len(attrs) == 0 {
		return r
	}
	merged := make([]slog.Attr, 0, len(r.Attrs)+len(attrs))
	merged = append(merged, r.Attrs...)
	merged = append(merged, attrs...)
	r.Attrs = merged
	return r
}

// withSource 根据程序计数器填充 Module、File、Line
func (r Record) withSource(pc uintptr) Record {
	if pc == 0 {
		return r
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	r.File = frame.File
	r.Line = frame.Line
	r.Module = packagePath(frame.Function)
	if r.Target == "" {
		r.Target = r.Module
	}
	return r
}

// packagePath 从 runtime 函数全名中截取包路径
//
// "github.com/a/b/pkg.(*T).Method" → "github.com/a/b/pkg"
// "main.main.func1" → "main"
func packagePath(function string) string {
	if function == "" {
		return ""
	}
	// 包路径最后一段之后的第一个 '.' 是包名与符号的分隔
	lastSlash := strings.LastIndexByte(function, '/')
	dot := strings.IndexByte(function[lastSlash+1:], '.')
	if dot < 0 {
		return function
	}
	return function[:lastSlash+1+dot]
}
