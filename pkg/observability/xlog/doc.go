// Package xlog 日志分发核心：Logger → 过滤器链 → appender → 布局。
//
// # 核心概念
//
//   - [Record]：调用方产生的一条日志，构造后只读
//   - [Filter] / [Chain]：三态判定（Neutral/Accept/Reject），第一个非 Neutral 的判定生效，
//     全部 Neutral 时放行；内置 [MaxLevel] 和 [TargetPrefix]
//   - [Layout]：纯函数渲染，内置 [TextLayout]（可着色）和 [JSONLayout]
//   - [Appender]：具名输出端，自带过滤器和布局；内置 [WriterAppender]、[Stdout]、
//     [Stderr] 以及按时间轮转的 [RollingFileAppender]
//   - [Logger]：持有有序 appender 列表，负责分发、聚合错误和刷新
//
// # 创建 Logger
//
// 使用 Builder 模式（first-error-wins：遇到第一个配置错误后，后续 Set/Add 操作被跳过）：
//
//	file, err := xlog.NewRollingFileAppender("app", "/var/log/app", "app",
//		[]xrotate.TimedOption{
//			xrotate.WithPeriod(xrotate.PeriodHourly),
//			xrotate.WithSuffix("log"),
//			xrotate.WithMaxFiles(24),
//		})
//	if err != nil {
//		return err
//	}
//	logger, err := xlog.New().
//		SetLevel(xlog.LevelDebug.Filter()).
//		AddAppender(xlog.Stderr(xlog.WithMaxLevel(xlog.LevelInfo.Filter()))).
//		AddAppender(file).
//		Build()
//	if err != nil {
//		return err
//	}
//	defer logger.Close()
//
// 也可以从配置文件构建，见 [FromConfig] 和 [Config]。
//
// # 日志级别
//
// LevelError(1) < LevelWarn(2) < LevelInfo(3) < LevelDebug(4) < LevelTrace(5)，
// 数值越大越啰嗦。[LevelFilter] 在此基础上增加 [LevelOff]，值为 N 时放行所有 Level <= N 的记录。
//
// # 错误处理
//
// [Logger.Log] 把每个 appender 的失败（包括 panic）以 errors.Join 合并返回，
// 一个 appender 失败不影响其他 appender。便捷方法（Info 等）不返回错误，
// 失败通过 [Builder.SetOnError] 回调通知，并计入 [Logger.ErrorCount]。
//
// # 全局 Logger 与 slog
//
// [Default] 返回惰性初始化的全局 Logger，适用于脚手架、小工具等简单场景，服务端推荐依赖注入。
// [NewHandler] 把 Logger 适配为 slog.Handler，slog.New 产生的记录经过同一条管道。
package xlog
