package xrotate

import (
	"fmt"
	"strings"
	"time"
)

// Period 按时间轮转的周期
//
// 零值为 [PeriodNever]，表示不按时间轮转。
type Period int

// 轮转周期
const (
	// PeriodNever 不按时间轮转
	PeriodNever Period = iota
	// PeriodMinutely 每分钟轮转
	PeriodMinutely
	// PeriodHourly 每小时轮转
	PeriodHourly
	// PeriodDaily 每天零点轮转
	PeriodDaily
)

// 文件名日期后缀的 Go 时间布局
const (
	layoutMinutely = "2006-01-02-15-04"
	layoutHourly   = "2006-01-02-15"
	layoutDaily    = "2006-01-02"
)

// String 返回周期的小写名称
func (p Period) String() string {
	switch p {
	case PeriodNever:
		return "never"
	case PeriodMinutely:
		return "minutely"
	case PeriodHourly:
		return "hourly"
	case PeriodDaily:
		return "daily"
	default:
		return fmt.Sprintf("Period(%d)", int(p))
	}
}

// IsValid 是否为已定义的周期
func (p Period) IsValid() bool {
	return p >= PeriodNever && p <= PeriodDaily
}

// MarshalText 实现 encoding.TextMarshaler
func (p Period) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPeriod, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler，便于从配置文件直接解析
func (p *Period) UnmarshalText(data []byte) error {
	parsed, err := ParsePeriod(string(data))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePeriod 解析周期名称（大小写不敏感，自动 TrimSpace）
//
// 空字符串解析为 [PeriodNever]。
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "never":
		return PeriodNever, nil
	case "minutely", "minute":
		return PeriodMinutely, nil
	case "hourly", "hour":
		return PeriodHourly, nil
	case "daily", "day":
		return PeriodDaily, nil
	default:
		return PeriodNever, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
}

// NextBoundary 计算 now 之后的下一个轮转边界
//
// 先按周期前进一个单位，再向下取整到周期粒度（秒/分/时清零），
// 因此返回值总是严格晚于 now，即使 now 恰好落在边界上也会跳到下一个边界，
// 不会产生零长度的轮转窗口。
//
// 取整基于 now 所在时区的日历字段：Daily 在 now 所在时区的零点轮转。
//
// PeriodNever 返回 (time.Time{}, false)，调用方必须单独处理"永不轮转"，
// 不能把零值当作"无限远"。
func NextBoundary(p Period, now time.Time) (time.Time, bool) {
	var next time.Time
	switch p {
	case PeriodNever:
		return time.Time{}, false
	case PeriodMinutely:
		next = now.Add(time.Minute)
	case PeriodHourly:
		next = now.Add(time.Hour)
	case PeriodDaily:
		next = now.AddDate(0, 0, 1)
	default:
		panic(fmt.Sprintf("xrotate: unknown period %d; this is a bug in the rotation policy", int(p)))
	}
	return Round(p, next), true
}

// Round 将 t 向下取整到周期粒度
//
// 取整是幂等的：Round(p, Round(p, t)) == Round(p, t)。
//
// Minutely/Hourly 通过减去时长实现，夏令时回拨的重复时段内也不会把时间
// 推到 t 之前的另一个偏移量上；Daily 通过日历字段构造当天零点。
//
// 对 PeriodNever 取整没有意义，调用即为程序缺陷，直接 panic。
func Round(p Period, t time.Time) time.Time {
	switch p {
	case PeriodMinutely:
		return t.Add(-time.Duration(t.Second())*time.Second - time.Duration(t.Nanosecond()))
	case PeriodHourly:
		return t.Add(-time.Duration(t.Minute())*time.Minute -
			time.Duration(t.Second())*time.Second -
			time.Duration(t.Nanosecond()))
	case PeriodDaily:
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	case PeriodNever:
		panic("xrotate: PeriodNever cannot be rounded; this is a bug in the rotation policy")
	default:
		panic(fmt.Sprintf("xrotate: unknown period %d; this is a bug in the rotation policy", int(p)))
	}
}

// DateLayout 返回生成文件名后缀的 Go 时间布局
//
//   - PeriodMinutely: 2006-01-02-15-04
//   - PeriodHourly:   2006-01-02-15
//   - PeriodDaily、PeriodNever: 2006-01-02
//
// 布局仅用于文件命名，不参与边界计算。
func DateLayout(p Period) string {
	switch p {
	case PeriodMinutely:
		return layoutMinutely
	case PeriodHourly:
		return layoutHourly
	case PeriodDaily, PeriodNever:
		return layoutDaily
	default:
		panic(fmt.Sprintf("xrotate: no date layout for period %d; this is a bug in the rotation policy", int(p)))
	}
}

// FormatDate 按周期布局格式化 t，得到文件名后缀
func FormatDate(p Period, t time.Time) string {
	return t.Format(DateLayout(p))
}
