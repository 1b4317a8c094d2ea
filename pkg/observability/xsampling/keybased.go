package xsampling

import (
	"math"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

// KeyBasedSampler 基于 key 的一致性采样策略
//
// 对于相同的 key，在相同的 rate 下总是产生相同的采样决策，跨进程、跨重启一致。
// 用于日志时 key 通常是记录的 Target：同一模块的调试输出要么全部保留，要么全部丢弃，
// 不会出现同一模块日志时有时无、上下文断裂的情况。
//
// 没有 Target 的记录（空 key）按比率随机保留。
type KeyBasedSampler struct {
	rate float64
}

// NewKeyBasedSampler 创建基于 key 的一致性采样器
//
// rate 超出 [0.0, 1.0] 范围或为 NaN 时返回 ErrInvalidRate。
func NewKeyBasedSampler(rate float64) (*KeyBasedSampler, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	return &KeyBasedSampler{rate: rate}, nil
}

// ShouldSample 实现 Sampler 接口
func (s *KeyBasedSampler) ShouldSample(key string) bool {
	switch {
	case s.rate <= 0:
		return false
	case s.rate >= 1:
		return true
	case key == "":
		return rand.Float64() < s.rate
	}
	// 哈希归一化到 [0, 1]，等于 1 时 rate < 1 不会保留
	return float64(xxhash.Sum64String(key))/float64(math.MaxUint64) < s.rate
}

// Rate 返回采样比率
func (s *KeyBasedSampler) Rate() float64 {
	return s.rate
}

var _ Sampler = (*KeyBasedSampler)(nil)
