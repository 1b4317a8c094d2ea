// Package xrotate 提供日志文件的时间轮转策略与轮转写入器。
//
// # 轮转策略
//
// [Period] 是封闭的周期集合：PeriodNever、PeriodMinutely、PeriodHourly、PeriodDaily。
//
//   - [NextBoundary]: 计算下一个轮转边界（先前进一个周期再向下取整），
//     结果总是严格晚于输入时间；PeriodNever 返回 ok=false
//   - [Round]: 向下取整到周期粒度，幂等
//   - [DateLayout] / [FormatDate]: 文件名日期后缀的布局与格式化
//
// 策略是纯函数，不读取系统时间。
//
// # 轮转写入器
//
// [Rotator] 接口定义写入器的核心行为（Write/Close/Rotate），所有实现并发安全。
//
//   - [NewTimed]: 按时间周期切换文件，文件名 <prefix>.<日期>[.<suffix>]；
//     时间由注入的 xclock.Clock 提供，周期内由 lumberjack 写入并按大小切分，
//     超出 MaxFiles 的旧文件在轮转后删除
//
// lumberjack 默认使用 0600 权限创建日志文件。
package xrotate
