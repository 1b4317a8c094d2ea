// Package xclock 提供可注入的时间源。
//
// 轮转、限流等依赖"当前时间"的逻辑通过 [Clock] 获取时间，
// 生产环境使用 [System]，测试使用 [Fixed] 精确控制时间，避免与真实时间赛跑。
//
// # 实现
//
//   - [System]: 每次调用读取系统时钟，无状态，并发安全
//   - [Fixed]: 持有一个可替换的时间点，Set/Now 互斥，并发安全
//   - [Func]: 将普通函数适配为 Clock
//
// 所有实现的 Now 都不会失败。
package xclock
