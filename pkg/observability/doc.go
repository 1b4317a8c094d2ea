// Package observability 提供日志管道相关的子包。
//
// 子包列表：
//   - xlog: 日志分发核心，Logger → 过滤器链 → appender → 布局
//   - xrotate: 按时间周期轮转的日志文件写入器与轮转边界计算
//   - xclock: 可注入的时钟，测试中用固定时钟驱动轮转
//   - xsampling: 采样策略，用于削减啰嗦级别的输出
//   - xmetrics: 日志管道指标（OpenTelemetry）
//
// 设计原则：
//   - 分发路径同步执行，没有后台调度
//   - 单个 appender 的失败不影响其他 appender
//   - 时间相关的行为都可以通过时钟注入精确测试
package observability
