package xrotate

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xlogpipe/pkg/observability/xclock"
)

// listDir 返回目录中的文件名（已排序）
func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func newTestTimed(t *testing.T, dir string, clock xclock.Clock, opts ...TimedOption) *Timed {
	t.Helper()
	opts = append([]TimedOption{WithTimedClock(clock), WithSuffix("log")}, opts...)
	r, err := NewTimed(dir, "app", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// =============================================================================
// 配置校验
// =============================================================================

func TestNewTimed_Validation(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		dir     string
		prefix  string
		opts    []TimedOption
		wantErr error
	}{
		{name: "空目录", dir: "", prefix: "app", wantErr: ErrEmptyDir},
		{name: "空前缀", dir: dir, prefix: "", wantErr: ErrEmptyPrefix},
		{name: "前缀含分隔符", dir: dir, prefix: "a/b", wantErr: ErrInvalidPrefix},
		{name: "非法周期", dir: dir, prefix: "app", opts: []TimedOption{WithPeriod(Period(9))}, wantErr: ErrInvalidPeriod},
		{name: "MaxFiles 为负", dir: dir, prefix: "app", opts: []TimedOption{WithMaxFiles(-1)}, wantErr: ErrInvalidMaxFiles},
		{name: "MaxFiles 过大", dir: dir, prefix: "app", opts: []TimedOption{WithMaxFiles(maxFilesLimit + 1)}, wantErr: ErrInvalidMaxFiles},
		{name: "分段过大", dir: dir, prefix: "app", opts: []TimedOption{WithSegmentMaxSize(maxSegmentSizeMB + 1)}, wantErr: ErrInvalidMaxSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTimed(tt.dir, tt.prefix, tt.opts...)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewTimed_NilOptionIgnored(t *testing.T) {
	r, err := NewTimed(t.TempDir(), "app", nil, WithPeriod(PeriodDaily), nil)
	require.NoError(t, err)
	require.NoError(t, r.Close())
}

func TestNewTimed_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	clock := xclock.NewFixed(time.Date(2024, 8, 10, 17, 12, 52, 0, time.UTC))
	r := newTestTimed(t, dir, clock, WithPeriod(PeriodDaily))

	_, err := r.Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "app.2024-08-10.log"), r.Filename())
	assert.Equal(t, "hello\n", readFile(t, r.Filename()))
}

// =============================================================================
// 时间轮转
// =============================================================================

func TestTimed_HourlyRotation(t *testing.T) {
	dir := t.TempDir()
	clock := xclock.NewFixed(time.Date(2024, 8, 10, 17, 12, 52, 0, time.UTC))
	r := newTestTimed(t, dir, clock, WithPeriod(PeriodHourly))

	boundary, ok := r.NextBoundary()
	require.True(t, ok)
	assert.True(t, boundary.Equal(time.Date(2024, 8, 10, 18, 0, 0, 0, time.UTC)))

	_, err := r.Write([]byte("first\n"))
	require.NoError(t, err)

	// 边界前一纳秒不轮转
	clock.Set(boundary.Add(-time.Nanosecond))
	_, err = r.Write([]byte("second\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"app.2024-08-10-17.log"}, listDir(t, dir))

	// 恰好到达边界时轮转
	clock.Set(boundary)
	_, err = r.Write([]byte("third\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"app.2024-08-10-17.log", "app.2024-08-10-18.log"}, listDir(t, dir))
	assert.Equal(t, "first\nsecond\n", readFile(t, filepath.Join(dir, "app.2024-08-10-17.log")))
	assert.Equal(t, "third\n", readFile(t, filepath.Join(dir, "app.2024-08-10-18.log")))

	next, ok := r.NextBoundary()
	require.True(t, ok)
	assert.True(t, next.Equal(time.Date(2024, 8, 10, 19, 0, 0, 0, time.UTC)))
}

func TestTimed_SkippedPeriods(t *testing.T) {
	// 长时间没有写入时，直接切到当前时间所在的周期
	dir := t.TempDir()
	clock := xclock.NewFixed(time.Date(2024, 8, 10, 17, 12, 52, 0, time.UTC))
	r := newTestTimed(t, dir, clock, WithPeriod(PeriodMinutely))

	_, err := r.Write([]byte("a\n"))
	require.NoError(t, err)

	clock.Set(time.Date(2024, 8, 10, 20, 5, 30, 0, time.UTC))
	_, err = r.Write([]byte("b\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"app.2024-08-10-17-12.log", "app.2024-08-10-20-05.log"}, listDir(t, dir))
	next, _ := r.NextBoundary()
	assert.True(t, next.Equal(time.Date(2024, 8, 10, 20, 6, 0, 0, time.UTC)))
}

func TestTimed_Never(t *testing.T) {
	dir := t.TempDir()
	clock := xclock.NewFixed(time.Date(2024, 8, 10, 17, 12, 52, 0, time.UTC))
	r := newTestTimed(t, dir, clock)

	assert.Equal(t, PeriodNever, r.Period())
	_, ok := r.NextBoundary()
	assert.False(t, ok)

	for range 3 {
		_, err := r.Write([]byte("x\n"))
		require.NoError(t, err)
		clock.Advance(48 * time.Hour)
	}
	assert.Equal(t, []string{"app.2024-08-10.log"}, listDir(t, dir))
	assert.Equal(t, "x\nx\nx\n", readFile(t, r.Filename()))
}

func TestTimed_Location(t *testing.T) {
	dir := t.TempDir()
	// UTC 09:12:52 即 +08:00 的 17:12:52
	clock := xclock.NewFixed(time.Date(2024, 8, 10, 9, 12, 52, 0, time.UTC))
	r := newTestTimed(t, dir, clock, WithPeriod(PeriodHourly), WithLocation(utc8))

	assert.Equal(t, filepath.Join(dir, "app.2024-08-10-17.log"), r.Filename())
	boundary, _ := r.NextBoundary()
	assert.True(t, boundary.Equal(time.Date(2024, 8, 10, 18, 0, 0, 0, utc8)))
}

func TestTimed_ConcurrentWritersRotateOnce(t *testing.T) {
	dir := t.TempDir()
	clock := xclock.NewFixed(time.Date(2024, 8, 10, 17, 59, 0, 0, time.UTC))

	var rotations atomic.Int32
	r := newTestTimed(t, dir, clock,
		WithPeriod(PeriodHourly),
		WithOnRotate(func(_, _ string) { rotations.Add(1) }),
	)

	_, err := r.Write([]byte("before\n"))
	require.NoError(t, err)

	clock.Set(time.Date(2024, 8, 10, 18, 0, 1, 0, time.UTC))

	const writers = 32
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Write([]byte("after\n"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), rotations.Load())
	assert.Len(t, readFile(t, filepath.Join(dir, "app.2024-08-10-18.log")), writers*len("after\n"))
}

func TestTimed_OnRotateNames(t *testing.T) {
	dir := t.TempDir()
	clock := xclock.NewFixed(time.Date(2024, 8, 10, 23, 59, 59, 0, time.UTC))

	var gotOld, gotNew string
	r := newTestTimed(t, dir, clock,
		WithPeriod(PeriodDaily),
		WithOnRotate(func(oldName, newName string) { gotOld, gotNew = oldName, newName }),
	)
	_, err := r.Write([]byte("a\n"))
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = r.Write([]byte("b\n"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "app.2024-08-10.log"), gotOld)
	assert.Equal(t, filepath.Join(dir, "app.2024-08-11.log"), gotNew)
}

// =============================================================================
// 保留数量
// =============================================================================

func TestTimed_MaxFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.conf"), []byte("keep"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.2024-01-01.log"), []byte("keep"), 0o600))

	clock := xclock.NewFixed(time.Date(2024, 8, 10, 17, 0, 0, 0, time.UTC))
	r := newTestTimed(t, dir, clock, WithPeriod(PeriodMinutely), WithMaxFiles(3))

	for range 6 {
		_, err := r.Write([]byte("x\n"))
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	assert.Equal(t, []string{
		"app.2024-08-10-17-03.log",
		"app.2024-08-10-17-04.log",
		"app.2024-08-10-17-05.log",
		"app.conf",
		"other.2024-01-01.log",
	}, listDir(t, dir))
}

func TestTimed_PruneErrorReported(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := t.TempDir()
	clock := xclock.NewFixed(time.Date(2024, 8, 10, 17, 0, 0, 0, time.UTC))

	var reported atomic.Int32
	var lastErr atomic.Value
	r := newTestTimed(t, dir, clock,
		WithPeriod(PeriodMinutely),
		WithMaxFiles(1),
		WithTimedOnError(func(err error) {
			reported.Add(1)
			lastErr.Store(err)
		}),
	)
	_, err := r.Write([]byte("x\n"))
	require.NoError(t, err)

	// 目录只读时删除旧文件失败，轮转本身仍然成功
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o750) })

	clock.Advance(time.Minute)
	require.NoError(t, r.Rotate())
	assert.Equal(t, int32(1), reported.Load())
	assert.ErrorIs(t, lastErr.Load().(error), ErrPruneFailed)
	assert.Equal(t, filepath.Join(dir, "app.2024-08-10-17-01.log"), r.Filename())
}

func TestTimed_OnErrorPanicIsolated(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := t.TempDir()
	clock := xclock.NewFixed(time.Date(2024, 8, 10, 17, 0, 0, 0, time.UTC))
	r := newTestTimed(t, dir, clock,
		WithPeriod(PeriodMinutely),
		WithMaxFiles(1),
		WithTimedOnError(func(error) { panic("boom") }),
	)
	_, err := r.Write([]byte("x\n"))
	require.NoError(t, err)

	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o750) })

	clock.Advance(time.Minute)
	assert.NotPanics(t, func() { _ = r.Rotate() })
}

// =============================================================================
// 手动轮转与关闭
// =============================================================================

func TestTimed_RotateWithinPeriod(t *testing.T) {
	dir := t.TempDir()
	clock := xclock.NewFixed(time.Date(2024, 8, 10, 17, 12, 52, 0, time.UTC))
	r := newTestTimed(t, dir, clock, WithPeriod(PeriodHourly))

	_, err := r.Write([]byte("a\n"))
	require.NoError(t, err)
	require.NoError(t, r.Rotate())
	_, err = r.Write([]byte("b\n"))
	require.NoError(t, err)

	names := listDir(t, dir)
	require.Len(t, names, 2, "lumberjack keeps the previous content as a timestamped backup")
	assert.Contains(t, names, "app.2024-08-10-17.log")
	assert.Equal(t, "b\n", readFile(t, filepath.Join(dir, "app.2024-08-10-17.log")))
}

func TestTimed_Close(t *testing.T) {
	clock := xclock.NewFixed(time.Date(2024, 8, 10, 17, 12, 52, 0, time.UTC))
	r, err := NewTimed(t.TempDir(), "app", WithTimedClock(clock))
	require.NoError(t, err)

	_, err = r.Write([]byte("x\n"))
	require.NoError(t, err)

	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Close(), ErrClosed)

	_, err = r.Write([]byte("y\n"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, r.Rotate(), ErrClosed)
}

func TestTimed_WithoutSuffix(t *testing.T) {
	dir := t.TempDir()
	clock := xclock.NewFixed(time.Date(2024, 8, 10, 17, 12, 52, 0, time.UTC))
	r, err := NewTimed(dir, "svc", WithTimedClock(clock), WithPeriod(PeriodDaily))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	assert.Equal(t, filepath.Join(dir, "svc.2024-08-10"), r.Filename())
}

func TestTimed_MaxFilesWithoutSuffix(t *testing.T) {
	dir := t.TempDir()
	clock := xclock.NewFixed(time.Date(2024, 8, 10, 17, 12, 52, 0, time.UTC))
	r, err := NewTimed(dir, "app", WithTimedClock(clock), WithPeriod(PeriodHourly), WithMaxFiles(1))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	for range 3 {
		_, err := r.Write([]byte("x\n"))
		require.NoError(t, err)
		require.NoError(t, r.Rotate())
	}
	clock.Advance(3 * time.Hour)
	_, err = r.Write([]byte("y\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"app.2024-08-10-20"}, listDir(t, dir))
}

func TestTimed_MaxFilesWithoutSuffixKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	clock := xclock.NewFixed(time.Date(2024, 8, 10, 17, 12, 52, 0, time.UTC))
	r, err := NewTimed(dir, "app", WithTimedClock(clock), WithPeriod(PeriodHourly), WithMaxFiles(2))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	_, err = r.Write([]byte("a\n"))
	require.NoError(t, err)
	require.NoError(t, r.Rotate())
	_, err = r.Write([]byte("b\n"))
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, err = r.Write([]byte("c\n"))
	require.NoError(t, err)

	// 17 点的备份（a）比 17 点的文件（b）旧，先被删除
	assert.Equal(t, []string{"app.2024-08-10-17", "app.2024-08-10-18"}, listDir(t, dir))
	assert.Equal(t, "b\n", readFile(t, filepath.Join(dir, "app.2024-08-10-17")))
}

func TestPeriodKey(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		wantOK bool
	}{
		{"带后缀的周期文件", "app.2024-08-10.log", true},
		{"带后缀的备份", "app.2024-08-10-17-2024-08-10T17-30-00.000.log", true},
		{"无后缀的周期文件", "app.2024-08-10-17", true},
		{"无后缀的备份", "app-2024-08-10T17-30-00.000.2024-08-10-17", true},
		{"其他配置文件", "app.conf", false},
		{"只有前缀", "app.", false},
		{"前缀相同的其他文件", "application.2024.log", false},
		{"连字符后不是时间戳", "app-old.2024-08-10", false},
		{"无扩展名的连字符文件", "app-2024", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := periodKey(tt.file, "app")
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestPeriodKey_Order(t *testing.T) {
	// 从旧到新
	ordered := [][]string{
		{"app.2024-08-10-16", "app-2024-08-10T17-10-00.000.2024-08-10-17", "app-2024-08-10T17-20-00.000.2024-08-10-17", "app.2024-08-10-17", "app.2024-08-10-18"},
		{"app.2024-08-10-16.log", "app.2024-08-10-17-2024-08-10T17-10-00.000.log", "app.2024-08-10-17.log", "app.2024-08-10-18.log"},
	}
	for _, names := range ordered {
		for i := 1; i < len(names); i++ {
			older, ok := periodKey(names[i-1], "app")
			require.True(t, ok)
			newer, ok := periodKey(names[i], "app")
			require.True(t, ok)
			assert.Less(t, older, newer, "%s should be older than %s", names[i-1], names[i])
		}
	}
}
