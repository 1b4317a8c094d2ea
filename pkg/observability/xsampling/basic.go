package xsampling

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
)

// constSampler 固定结果的采样器
type constSampler bool

func (s constSampler) ShouldSample(string) bool { return bool(s) }

// Always 保留一切
func Always() Sampler { return constSampler(true) }

// Never 丢弃一切，配置 sample_rate: 0 时使用
func Never() Sampler { return constSampler(false) }

// RateSampler 按比率随机保留，与 key 无关
type RateSampler struct {
	rate float64
}

// NewRateSampler 创建比率采样器，rate 为 NaN 或不在 [0, 1] 内时返回 [ErrInvalidRate]
func NewRateSampler(rate float64) (*RateSampler, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	return &RateSampler{rate: rate}, nil
}

// ShouldSample 实现 Sampler 接口
//
// 随机数取自 math/rand/v2 的全局源，无锁且并发安全；日志采样不需要密码学强度。
func (s *RateSampler) ShouldSample(string) bool {
	switch {
	case s.rate <= 0:
		return false
	case s.rate >= 1:
		return true
	default:
		return rand.Float64() < s.rate
	}
}

// Rate 返回采样比率
func (s *RateSampler) Rate() float64 {
	return s.rate
}

// CountSampler 按 key 计数，每个 key 的第 1、n+1、2n+1... 条记录被保留
//
// 每个 Target 独立计数：一个刷屏的模块不会挤占其他模块的名额，
// 每个模块的第一条记录总能输出。key 的数量即 Target 的数量，不做淘汰。
//
// 零值可用，按全采样处理。
type CountSampler struct {
	n      int
	counts sync.Map // key → *atomic.Uint64
}

// NewCountSampler 创建计数采样器，n < 1 时返回 [ErrInvalidCount]
func NewCountSampler(n int) (*CountSampler, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, n)
	}
	return &CountSampler{n: n}, nil
}

// ShouldSample 实现 Sampler 接口
func (s *CountSampler) ShouldSample(key string) bool {
	if s.n <= 1 {
		return true
	}
	c, ok := s.counts.Load(key)
	if !ok {
		c, _ = s.counts.LoadOrStore(key, new(atomic.Uint64))
	}
	// 计数器溢出后无符号取模仍保持周期
	return (c.(*atomic.Uint64).Add(1)-1)%uint64(s.n) == 0
}

// Reset 清空所有 key 的计数，下一条记录重新从"保留"开始
func (s *CountSampler) Reset() {
	s.counts.Clear()
}

// N 返回采样间隔
func (s *CountSampler) N() int {
	return s.n
}

func validateRate(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidRate, rate)
	}
	return nil
}

var (
	_ Sampler = constSampler(false)
	_ Sampler = (*RateSampler)(nil)
	_ Sampler = (*CountSampler)(nil)
)
