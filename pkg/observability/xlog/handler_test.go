package xlog

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Handle(t *testing.T) {
	a, buf := newBufferAppender(t, "buf")
	l := mustBuild(t, New().AddAppender(a))
	logger := slog.New(NewHandler(l))

	logger.Info("hello", "user", "alice")
	_, file, line, _ := runtime.Caller(0)

	want := fmt.Sprintf(" INFO github.com/omeyang/xlogpipe/pkg/observability/xlog: %s:%d hello user=alice\n", file, line-1)
	assert.True(t, strings.HasSuffix(buf.String(), want), "got %q", buf.String())
}

func TestHandler_AttrsAndGroups(t *testing.T) {
	a, buf := newBufferAppender(t, "buf")
	l := mustBuild(t, New().SetAddSource(false).AddAppender(a))

	logger := slog.New(NewHandler(l)).
		With("svc", "api").
		WithGroup("req").
		With("id", 7).
		WithGroup("hdr")
	logger.Info("m", "ua", "curl")

	assert.True(t, strings.HasSuffix(buf.String(), " m svc=api req.id=7 req.hdr.ua=curl\n"), "got %q", buf.String())
}

func TestHandler_AttrsAndGroupsJSON(t *testing.T) {
	a, buf := newBufferAppender(t, "buf", WithLayout(&JSONLayout{Location: time.UTC}))
	l := mustBuild(t, New().SetAddSource(false).AddAppender(a))

	logger := slog.New(NewHandler(l)).
		With("svc", "api").
		WithGroup("req").
		With("id", 7).
		WithGroup("hdr")
	logger.Info("m", "ua", "curl")

	var got struct {
		KVs map[string]any `json:"kvs"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, map[string]any{
		"svc": "api",
		"req": map[string]any{
			"id":  float64(7),
			"hdr": map[string]any{"ua": "curl"},
		},
	}, got.KVs)
}

func TestHandler_EmptyGroupAndAttrs(t *testing.T) {
	h := NewHandler(mustBuild(t, New()))
	assert.Same(t, h, h.WithGroup(""))
	assert.Same(t, h, h.WithAttrs(nil))
}

func TestHandler_DoesNotShareState(t *testing.T) {
	a, buf := newBufferAppender(t, "buf")
	l := mustBuild(t, New().AddAppender(a))

	base := slog.New(NewHandler(l)).With("a", 1)
	left := base.With("b", 2)
	right := base.With("c", 3)

	left.Info("left")
	right.Info("right")

	out := buf.String()
	assert.Contains(t, out, "left a=1 b=2\n")
	assert.Contains(t, out, "right a=1 c=3\n")
}

func TestHandler_LevelMapping(t *testing.T) {
	a, buf := newBufferAppender(t, "buf", WithMaxLevel(LevelDebug.Filter()))
	l := mustBuild(t, New().SetAddSource(false).AddAppender(a))
	logger := slog.New(NewHandler(l))
	ctx := context.Background()

	logger.Log(ctx, slog.LevelDebug-4, "trace")
	logger.Debug("debug")
	logger.Warn("warn")
	logger.Log(ctx, slog.LevelError+4, "fatal")

	out := buf.String()
	assert.NotContains(t, out, "trace")
	assert.Contains(t, out, "DEBUG : : debug\n")
	assert.Contains(t, out, " WARN : : warn\n")
	assert.Contains(t, out, "ERROR : : fatal\n")

	assert.False(t, logger.Enabled(ctx, slog.LevelDebug-4))
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug))
}

func TestHandler_WithTarget(t *testing.T) {
	a, buf := newBufferAppender(t, "buf", WithFilters(TargetPrefix("db")))
	l := mustBuild(t, New().AddAppender(a))
	ctx := context.Background()

	plain := slog.New(NewHandler(l))
	assert.False(t, plain.Enabled(ctx, slog.LevelInfo), "未设置 Target 时按空 Target 判断")

	targeted := slog.New(NewHandler(l).WithTarget("db/sql"))
	assert.True(t, targeted.Enabled(ctx, slog.LevelInfo))
	targeted.Info("query")
	assert.Contains(t, buf.String(), "query")
}

func TestHandler_ClosedLogger(t *testing.T) {
	a, _ := newBufferAppender(t, "buf")
	l := mustBuild(t, New().AddAppender(a))
	require.NoError(t, l.Close())

	h := NewHandler(l)
	var r slog.Record
	r.Level = slog.LevelInfo
	assert.ErrorIs(t, h.Handle(context.Background(), r), ErrClosed)
}
