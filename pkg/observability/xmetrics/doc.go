// Package xmetrics 记录日志管道自身的运行指标。
//
// # 设计理念
//
// xmetrics 只定义最小化的 [Recorder] 接口，日志管道只依赖接口；
// 默认实现基于 OpenTelemetry，兼容主流可观测栈。未配置时使用 [Noop]。
//
// # 使用示例
//
//	rec, err := xmetrics.NewOTel(xmetrics.WithMeterProvider(mp))
//	if err != nil {
//		return err
//	}
//	logger, err := xlog.New().SetRecorder(rec).AddAppender(app).Build()
//
// # 指标命名
//
//   - xlog.records.dispatched: 写入成功的记录数
//   - xlog.records.rejected: 被过滤器拒绝的记录数
//   - xlog.appender.errors: appender 写入失败次数
//   - xlog.file.rotations: 文件轮转次数
//
// 统一属性：appender（appender 名称；Logger 级过滤使用 [ScopeLogger]）。
package xmetrics
