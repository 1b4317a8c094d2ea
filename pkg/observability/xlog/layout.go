package xlog

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"
	"unicode"

	"github.com/logrusorgru/aurora"
)

// Layout 把记录渲染为一行输出
//
// Format 是纯函数：相同的记录、时间和配置必须得到逐字节相同的结果。
// 渲染失败返回包装了 [ErrFormat] 的错误，调用方不得写入部分结果。
type Layout interface {
	Format(r Record, now time.Time) ([]byte, error)
}

// TextTimeLayout 文本布局的时间格式，毫秒精度，逗号分隔
const TextTimeLayout = "2006-01-02 15:04:05,000"

// LevelColors 级别到 ANSI 颜色的映射
type LevelColors map[Level]aurora.Color

// DefaultLevelColors 返回默认配色：Error 红、Warn 黄、Info 绿、Debug 蓝、Trace 品红
func DefaultLevelColors() LevelColors {
	return LevelColors{
		LevelError: aurora.RedFg,
		LevelWarn:  aurora.YellowFg,
		LevelInfo:  aurora.GreenFg,
		LevelDebug: aurora.BlueFg,
		LevelTrace: aurora.MagentaFg,
	}
}

// TextLayout 人类可读的单行文本布局
//
// 输出形如：
//
//	2024-08-10 17:12:52,123  INFO github.com/a/b/pkg: /src/pkg/x.go:42 message k=v
//
// 级别右对齐到 5 列，缺失的模块、文件、行号渲染为空串，属性以 " key=value" 追加，
// 分组属性的 key 以 "." 连接。
type TextLayout struct {
	// Location 时间显示时区，nil 表示 time.Local
	Location *time.Location

	// NoColor 关闭级别着色
	NoColor bool

	// Colors 覆盖默认配色，未出现的级别使用 [DefaultLevelColors]
	Colors LevelColors
}

var _ Layout = (*TextLayout)(nil)

// Format 实现 Layout 接口
func (l *TextLayout) Format(r Record, now time.Time) ([]byte, error) {
	loc := l.Location
	if loc == nil {
		loc = time.Local
	}

	buf := make([]byte, 0, 128+len(r.Message))
	buf = now.In(loc).AppendFormat(buf, TextTimeLayout)
	buf = append(buf, ' ')
	buf = append(buf, l.levelText(r.Level)...)
	buf = append(buf, ' ')
	buf = append(buf, r.Module...)
	buf = append(buf, ": "...)
	buf = append(buf, r.File...)
	buf = append(buf, ':')
	if r.Line > 0 {
		buf = strconv.AppendInt(buf, int64(r.Line), 10)
	}
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)
	for _, a := range r.Attrs {
		buf = appendTextAttr(buf, "", a)
	}
	buf = append(buf, '\n')
	return buf, nil
}

func (l *TextLayout) levelText(level Level) string {
	text := fmt.Sprintf("%5s", level.String())
	if l.NoColor {
		return text
	}
	color, ok := l.Colors[level]
	if !ok {
		color, ok = DefaultLevelColors()[level]
	}
	if !ok {
		return text
	}
	return aurora.Colorize(text, color).String()
}

// appendTextAttr 以 " key=value" 形式追加属性，分组递归展开
func appendTextAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}

	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			buf = appendTextAttr(buf, key, ga)
		}
		return buf
	}

	buf = append(buf, ' ')
	buf = append(buf, key...)
	buf = append(buf, '=')
	return appendTextValue(buf, a.Value)
}

func appendTextValue(buf []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindString:
		return appendMaybeQuoted(buf, v.String())
	case slog.KindTime:
		return v.Time().AppendFormat(buf, time.RFC3339Nano)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return appendMaybeQuoted(buf, err.Error())
		}
		return appendMaybeQuoted(buf, v.String())
	default:
		return append(buf, v.String()...)
	}
}

func appendMaybeQuoted(buf []byte, s string) []byte {
	if needsQuoting(s) {
		return strconv.AppendQuote(buf, s)
	}
	return append(buf, s...)
}

// needsQuoting 空串、含空白、等号、引号或不可打印字符时需要加引号
func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r == '=' || r == '"' || unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return true
		}
	}
	return false
}
