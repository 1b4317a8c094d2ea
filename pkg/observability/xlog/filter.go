package xlog

import (
	"fmt"
	"strings"
)

// Verdict 单个过滤器的三态判定
type Verdict uint8

const (
	// Neutral 没有意见，交给链上后续过滤器或默认放行
	Neutral Verdict = iota
	// Accept 放行，链上后续过滤器不再参与
	Accept
	// Reject 拒绝，链上后续过滤器不再参与
	Reject
)

// String 返回判定名称
func (v Verdict) String() string {
	switch v {
	case Neutral:
		return "neutral"
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return fmt.Sprintf("Verdict(%d)", uint8(v))
	}
}

// Filter 过滤器
//
// Decide 必须是 Metadata 的纯函数，不做 I/O、不失败，可并发调用。
type Filter interface {
	Decide(m Metadata) Verdict
}

// FilterFunc 函数适配器
type FilterFunc func(m Metadata) Verdict

// Decide 实现 Filter 接口
func (f FilterFunc) Decide(m Metadata) Verdict {
	return f(m)
}

// Chain 有序过滤器链
//
// 按顺序执行，第一个非 Neutral 的判定即为最终结果；全部 Neutral 时放行。
// nil 过滤器被跳过。空链放行一切。未定义的判定值按 Reject 处理。
type Chain []Filter

// Decide 折叠整条链，只返回 Accept 或 Reject
func (c Chain) Decide(m Metadata) Verdict {
	for _, f := range c {
		if f == nil {
			continue
		}
		switch f.Decide(m) {
		case Neutral:
		case Accept:
			return Accept
		default:
			return Reject
		}
	}
	return Accept
}

// Allows 是 Decide(m) == Accept 的简写
func (c Chain) Allows(m Metadata) bool {
	return c.Decide(m) == Accept
}

// MaxLevel 级别上限过滤器
//
// 级别不超过上限时返回 Neutral，交给默认放行；更啰嗦的级别返回 Reject。
// Ceiling 为 [LevelOff] 时拒绝一切。
type MaxLevel struct {
	Ceiling LevelFilter
}

// Decide 实现 Filter 接口
func (f MaxLevel) Decide(m Metadata) Verdict {
	if f.Ceiling.Allows(m.Level) {
		return Neutral
	}
	return Reject
}

// TargetPrefix 只放行 Target 以 prefix 开头的记录，其余拒绝
//
// prefix 为空时恒为 Neutral。
func TargetPrefix(prefix string) Filter {
	return FilterFunc(func(m Metadata) Verdict {
		if prefix == "" || strings.HasPrefix(m.Target, prefix) {
			return Neutral
		}
		return Reject
	})
}
