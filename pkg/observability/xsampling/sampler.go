package xsampling

import "errors"

var (
	// ErrInvalidRate 采样比率为 NaN 或不在 [0, 1] 内
	ErrInvalidRate = errors.New("xsampling: rate must be in [0, 1]")

	// ErrInvalidCount 计数采样的间隔小于 1
	ErrInvalidCount = errors.New("xsampling: count must be >= 1")
)

// Sampler 采样策略
//
// 返回 true 表示保留该记录。实现必须并发安全。
type Sampler interface {
	// ShouldSample 判断 key 对应的记录是否保留
	//
	// xlog 以记录的 Target 作为 key。RateSampler 忽略 key，
	// CountSampler 按 key 分别计数，KeyBasedSampler 按 key 的哈希决定。
	ShouldSample(key string) bool
}
