package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/omeyang/xlogpipe/pkg/config/xconf"
	"github.com/omeyang/xlogpipe/pkg/observability/xclock"
	"github.com/omeyang/xlogpipe/pkg/observability/xlog"
	"github.com/omeyang/xlogpipe/pkg/observability/xmetrics"
	"github.com/omeyang/xlogpipe/pkg/observability/xrotate"
)

// defaultConfigPath 日志配置在配置文件中的默认路径。
const defaultConfigPath = "log"

// =============================================================================
// boundary
// =============================================================================

func createBoundaryCommand() *cli.Command {
	return &cli.Command{
		Name:    "boundary",
		Aliases: []string{"b"},
		Usage:   "计算轮转周期的下一个边界",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "period",
				Aliases: []string{"p"},
				Usage:   "轮转周期: never | minutely | hourly | daily",
				Value:   "hourly",
			},
			&cli.StringFlag{
				Name:  "at",
				Usage: "参考时间（RFC3339），默认当前时间",
			},
			&cli.StringFlag{
				Name:  "tz",
				Usage: `时区: "UTC"、"Local"、"+08:00" 或 IANA 名称`,
				Value: "UTC",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return cmdBoundary(cmd.Root().Writer, xclock.System(),
				cmd.String("period"), cmd.String("at"), cmd.String("tz"))
		},
	}
}

// cmdBoundary 输出 at 所在周期的文件日期后缀和下一个边界。
func cmdBoundary(w io.Writer, clock xclock.Clock, periodName, at, tz string) error {
	period, err := xrotate.ParsePeriod(periodName)
	if err != nil {
		return usagef("%v", err)
	}
	loc, err := xlog.ParseLocation(tz)
	if err != nil {
		return usagef("%v", err)
	}
	if loc == nil {
		loc = time.UTC
	}

	now := clock.Now()
	if at != "" {
		if now, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return usagef("--at 必须是 RFC3339 时间: %v", err)
		}
	}
	now = now.In(loc)

	fmt.Fprintf(w, "period: %s\n", period)
	fmt.Fprintf(w, "at:     %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(w, "file:   %s\n", xrotate.FormatDate(period, now))
	if next, ok := xrotate.NextBoundary(period, now); ok {
		fmt.Fprintf(w, "next:   %s\n", next.Format(time.RFC3339))
	} else {
		fmt.Fprintln(w, "next:   never")
	}
	return nil
}

// =============================================================================
// emit
// =============================================================================

func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "配置文件（YAML/JSON），可重复指定，后者覆盖前者",
		},
		&cli.StringFlag{
			Name:  "path",
			Usage: "日志配置在文件中的路径",
			Value: defaultConfigPath,
		},
	}
}

type emitOptions struct {
	configs []string
	path    string
	level   string
	target  string
	message string
	stats   bool
}

func createEmitCommand() *cli.Command {
	return &cli.Command{
		Name:      "emit",
		Aliases:   []string{"e"},
		Usage:     "按配置构建 Logger 并写入一条日志",
		ArgsUsage: "<message...>",
		Flags: append(configFlags(),
			&cli.StringFlag{
				Name:    "level",
				Aliases: []string{"l"},
				Usage:   "日志级别: error | warn | info | debug | trace",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "target",
				Aliases: []string{"t"},
				Usage:   "记录来源，用于按 Target 过滤",
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "写入后输出各 appender 的分发计数",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			root := cmd.Root()
			return cmdEmit(ctx, root.Writer, root.ErrWriter, emitOptions{
				configs: cmd.StringSlice("config"),
				path:    cmd.String("path"),
				level:   cmd.String("level"),
				target:  cmd.String("target"),
				message: strings.Join(cmd.Args().Slice(), " "),
				stats:   cmd.Bool("stats"),
			})
		},
	}
}

// cmdEmit 写入一条日志。
//
// 未指定配置文件时写入 stdout（不着色的文本布局）。
func cmdEmit(ctx context.Context, stdout, stderr io.Writer, o emitOptions) (err error) {
	if strings.TrimSpace(o.message) == "" {
		return usagef("emit 需要日志内容")
	}
	level, err := xlog.ParseLevel(o.level)
	if err != nil {
		return usagef("%v", err)
	}

	var recorder xmetrics.Recorder
	var reader *sdkmetric.ManualReader
	if o.stats {
		reader = sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { err = errors.Join(err, mp.Shutdown(context.WithoutCancel(ctx))) }()
		if recorder, err = xmetrics.NewOTel(xmetrics.WithMeterProvider(mp)); err != nil {
			return err
		}
	}

	b, err := newBuilder(stdout, o.configs, o.path, recorder)
	if err != nil {
		return err
	}
	logger, err := b.SetOnError(func(err error) {
		fmt.Fprintf(stderr, "xlog: %v\n", err)
	}).Build()
	if err != nil {
		return err
	}

	meta := xlog.Metadata{Level: level, Target: o.target}
	if !logger.Enabled(meta) {
		fmt.Fprintf(stderr, "记录被过滤器拒绝: level=%s target=%q\n", level, o.target)
	}
	logErr := logger.Log(ctx, xlog.NewRecord(level, o.target, o.message))
	if err := errors.Join(logErr, logger.Close()); err != nil {
		return err
	}

	if reader != nil {
		return printStats(ctx, stdout, reader)
	}
	return nil
}

func newBuilder(stdout io.Writer, configs []string, path string, recorder xmetrics.Recorder) (*xlog.Builder, error) {
	if len(configs) == 0 {
		a, err := xlog.NewWriterAppender("stdout", stdout, xlog.WithRecorder(recorder))
		if err != nil {
			return nil, err
		}
		return xlog.New().SetRecorder(recorder).AddAppender(a), nil
	}
	cfg, err := xconf.NewFromFiles(configs)
	if err != nil {
		return nil, err
	}
	return xlog.FromConfig(cfg, path, xlog.WithConfigRecorder(recorder)), nil
}

// printStats 按 "指标 appender=值" 输出计数，按字典序排序。
func printStats(ctx context.Context, w io.Writer, reader *sdkmetric.ManualReader) error {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.WithoutCancel(ctx), &rm); err != nil {
		return err
	}
	var lines []string
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				appender, _ := dp.Attributes.Value(attribute.Key(xmetrics.AttrAppender))
				lines = append(lines, fmt.Sprintf("%s %s=%d", m.Name, appender.AsString(), dp.Value))
			}
		}
	}
	slices.Sort(lines)
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	return nil
}

// =============================================================================
// check
// =============================================================================

func createCheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "校验日志配置并列出 appender",
		Flags: configFlags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			configs := cmd.StringSlice("config")
			if len(configs) == 0 {
				return usagef("check 需要 --config")
			}
			return cmdCheck(cmd.Root().Writer, configs, cmd.String("path"))
		},
	}
}

// cmdCheck 构建 Logger 后立即关闭，输出每个 appender 的名称和去向。
//
// 配置以严格模式读取，拼错的键报错而不是被忽略。文件 appender 只创建目录，不会创建日志文件。
func cmdCheck(w io.Writer, configs []string, path string) error {
	cfg, err := xconf.NewFromFiles(configs, xconf.WithStrict())
	if err != nil {
		return err
	}
	logger, err := xlog.FromConfig(cfg, path).Build()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, a := range logger.Appenders() {
		switch a := a.(type) {
		case *xlog.RollingFileAppender:
			next := "never"
			if t, ok := a.Rotator().NextBoundary(); ok {
				next = t.Format(time.RFC3339)
			}
			fmt.Fprintf(tw, "%s\tfile\t%s\t%s\tnext %s\n", a.Name(), a.Filename(), a.Rotator().Period(), next)
		default:
			fmt.Fprintf(tw, "%s\tstream\n", a.Name())
		}
	}
	return errors.Join(tw.Flush(), logger.Close())
}
