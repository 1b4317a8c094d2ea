package xlog

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// 以下测试修改全局状态，不能并行
func TestDefault_Lazy(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	d := Default()
	assert.Same(t, d, Default())

	is := assert.New(t)
	is.True(d.Enabled(Metadata{Level: LevelInfo}))
	is.False(d.Enabled(Metadata{Level: LevelDebug}), "默认 Info 级别")

	apps := d.Appenders()
	is.Len(apps, 1)
	is.Equal("stderr", apps[0].Name())
}

func TestDefault_Concurrent(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	var wg sync.WaitGroup
	got := make([]*Logger, 16)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = Default()
		}()
	}
	wg.Wait()
	for _, l := range got {
		assert.Same(t, got[0], l)
	}
}

func TestSetDefault(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	a, _ := newBufferAppender(t, "buf")
	l := mustBuild(t, New().AddAppender(a))

	SetDefault(nil)
	assert.NotSame(t, l, Default(), "nil 被忽略")

	SetDefault(l)
	assert.Same(t, l, Default())

	ResetDefault()
	assert.NotSame(t, l, Default())
}

func TestGlobalFunctions(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	a, buf := newBufferAppender(t, "buf")
	SetDefault(mustBuild(t, New().AddAppender(a)))

	ctx := context.Background()
	Info(ctx, "info")
	_, file, line, _ := runtime.Caller(0)
	Error(ctx, "error")
	Warn(ctx, "warn")
	Debug(ctx, "debug")
	Trace(ctx, "trace")

	out := buf.String()
	assert.Equal(t, 5, strings.Count(out, "\n"))
	assert.Contains(t, out,
		fmt.Sprintf(" INFO github.com/omeyang/xlogpipe/pkg/observability/xlog: %s:%d info\n", file, line-1),
		"全局函数记录的是业务调用方的位置")
	for _, lvl := range []string{"ERROR", " WARN", "DEBUG", "TRACE"} {
		assert.Contains(t, out, lvl)
	}
}
