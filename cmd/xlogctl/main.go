// xlogctl 是 xlog 日志管道的命令行工具。
//
// 用法:
//
//	xlogctl <命令> [命令参数]
//
// 命令:
//
//	boundary       计算轮转周期的下一个边界和当前文件日期后缀
//	emit <msg>     按配置构建 Logger 并写入一条日志
//	check          校验日志配置并列出 appender
//	help           显示帮助信息
//
// 退出码:
//
//	0: 命令执行成功
//	1: 命令执行失败（配置无法构建、写入失败等）
//	2: 参数错误（非法周期、级别、时间格式、缺少必需参数等）
//
// 示例:
//
//	xlogctl boundary --period hourly --at 2024-08-10T17:12:52Z
//	xlogctl emit --config log.yaml --level warn --target billing "charge failed"
//	xlogctl emit --config base.yaml --config prod.yaml --stats "hello"
//	xlogctl check --config log.yaml --path logging
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

// usageError 参数错误，退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// createApp 创建 CLI 应用。
func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xlogctl",
		Usage:     "xlog 日志管道命令行工具",
		Version:   fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			createBoundaryCommand(),
			createEmitCommand(),
			createCheckCommand(),
		},
		DefaultCommand: "help",
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，
		// 由 run() 统一处理退出码映射。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(stderr, err)
			}
		},
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := createApp(stdout, stderr)
	if err := app.Run(ctx, args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		if isCLIUsageError(err) {
			fmt.Fprintf(stderr, "参数错误: %v\n", err)
			return 2
		}
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}

// isCLIUsageError 判断是否为 urfave/cli 产生的参数解析错误。
//
// urfave/cli 没有导出这类错误的类型，只能按消息前缀识别。
func isCLIUsageError(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{
		"flag provided but not defined",
		"invalid value",
		"No help topic for",
		"Required flag",
	} {
		if strings.Contains(msg, prefix) {
			return true
		}
	}
	return false
}
