// Package xsampling 提供日志采样策略。
//
// 采样器决定一条记录是否保留。xlog 通过 xlog.WithSampling 把采样器挂在 appender 上，
// 以记录的 Target 作为 key，在高流量下削减 Debug、Trace 这类啰嗦级别的输出。
//
// # 策略
//
//   - [Always]、[Never]: 固定结果
//   - [NewRateSampler]: 按比率随机保留
//   - [NewCountSampler]: 每个 key 每 n 条保留 1 条
//   - [NewKeyBasedSampler]: 按 key 的 xxhash 一致性保留
//
// # 一致性
//
// KeyBasedSampler 使用 github.com/cespare/xxhash/v2，同一 key 在所有进程、
// 所有重启之间得到相同的决策。以 Target 作为 key 时，一个模块的调试输出
// 整体保留或整体丢弃，不会时有时无。
//
// 所有采样器都是并发安全的。
package xsampling
