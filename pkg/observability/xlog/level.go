package xlog

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level 日志级别
//
// 数值越小优先级越高、越不啰嗦：Error(1) < Warn(2) < Info(3) < Debug(4) < Trace(5)。
// 零值不是合法级别。
type Level int

// 日志级别常量
const (
	LevelError Level = iota + 1
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// String 返回大写级别名，非法值返回 "Level(n)"
func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// IsValid 判断是否为已定义的级别
func (l Level) IsValid() bool {
	return l >= LevelError && l <= LevelTrace
}

// Filter 返回只放行到 l 为止的过滤级别
func (l Level) Filter() LevelFilter {
	return LevelFilter(l)
}

// Slog 转换为 slog.Level
//
// Trace 映射为 slog.LevelDebug-4，其余一一对应。
func (l Level) Slog() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelInfo:
		return slog.LevelInfo
	case LevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelDebug - 4
	}
}

// FromSlog 把 slog.Level 映射到最接近且不更啰嗦的级别
//
// 自定义级别向下取整：slog.LevelInfo+2 视为 Info，slog.LevelError+4 视为 Error。
func FromSlog(l slog.Level) Level {
	switch {
	case l >= slog.LevelError:
		return LevelError
	case l >= slog.LevelWarn:
		return LevelWarn
	case l >= slog.LevelInfo:
		return LevelInfo
	case l >= slog.LevelDebug:
		return LevelDebug
	default:
		return LevelTrace
	}
}

// MarshalText 实现 encoding.TextMarshaler 接口
func (l Level) MarshalText() ([]byte, error) {
	if !l.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler 接口
func (l *Level) UnmarshalText(data []byte) error {
	parsed, err := ParseLevel(string(data))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel 解析日志级别
//
// 支持 error/warn/warning/info/debug/trace（大小写不敏感，自动 TrimSpace）。
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "trace":
		return LevelTrace, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// =============================================================================
// LevelFilter
// =============================================================================

// LevelFilter 级别上限，在 Level 的基础上增加 Off
//
// 值为 N 时放行所有 Level <= N 的记录；[LevelOff] 拒绝一切。
type LevelFilter int

// LevelOff 关闭所有日志
const LevelOff LevelFilter = 0

// Allows 判断 level 是否在上限之内，未定义的级别（包括零值）一律不放行
func (f LevelFilter) Allows(level Level) bool {
	return level.IsValid() && int(level) <= int(f)
}

// String 返回 "OFF" 或对应级别名
func (f LevelFilter) String() string {
	if f == LevelOff {
		return "OFF"
	}
	return Level(f).String()
}

// MarshalText 实现 encoding.TextMarshaler 接口
func (f LevelFilter) MarshalText() ([]byte, error) {
	if f != LevelOff && !Level(f).IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler 接口
func (f *LevelFilter) UnmarshalText(data []byte) error {
	parsed, err := ParseLevelFilter(string(data))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseLevelFilter 解析级别上限，在 [ParseLevel] 的基础上接受 "off"
func ParseLevelFilter(s string) (LevelFilter, error) {
	if strings.EqualFold(strings.TrimSpace(s), "off") {
		return LevelOff, nil
	}
	l, err := ParseLevel(s)
	if err != nil {
		return LevelOff, err
	}
	return l.Filter(), nil
}
