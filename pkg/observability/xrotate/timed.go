package xrotate

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omeyang/xlogpipe/pkg/observability/xclock"
	"github.com/omeyang/xlogpipe/pkg/util/xfile"
)

// maxFilesLimit 保留文件数量上限
const maxFilesLimit = 1024

// timedConfig 时间轮转器配置
type timedConfig struct {
	period   Period
	suffix   string
	maxFiles int
	maxSize  int
	clock    xclock.Clock
	location *time.Location
	onRotate func(oldName, newName string)
	onError  func(error)
}

// TimedOption 时间轮转器配置选项
type TimedOption func(*timedConfig)

// WithPeriod 设置轮转周期，默认 [PeriodNever]
func WithPeriod(p Period) TimedOption {
	return func(c *timedConfig) {
		c.period = p
	}
}

// WithSuffix 设置文件扩展名（不含点），如 "log"
func WithSuffix(suffix string) TimedOption {
	return func(c *timedConfig) {
		c.suffix = strings.TrimPrefix(suffix, ".")
	}
}

// WithMaxFiles 设置目录中最多保留的周期文件数量（含当前文件）
//
// 0 表示不清理。
func WithMaxFiles(n int) TimedOption {
	return func(c *timedConfig) {
		c.maxFiles = n
	}
}

// WithSegmentMaxSize 设置单个周期文件的大小上限（MB）
//
// 0 表示使用 lumberjack 默认值（100MB）。
func WithSegmentMaxSize(mb int) TimedOption {
	return func(c *timedConfig) {
		c.maxSize = mb
	}
}

// WithTimedClock 设置时间源，默认 [xclock.System]
func WithTimedClock(clock xclock.Clock) TimedOption {
	return func(c *timedConfig) {
		c.clock = clock
	}
}

// WithLocation 设置边界计算和文件命名使用的时区，默认 UTC
func WithLocation(loc *time.Location) TimedOption {
	return func(c *timedConfig) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithOnRotate 设置轮转完成回调，参数为旧文件和新文件的完整路径
//
// 回调在持锁状态下同步执行，不得向同一轮转器写入数据。
func WithOnRotate(fn func(oldName, newName string)) TimedOption {
	return func(c *timedConfig) {
		c.onRotate = fn
	}
}

// WithTimedOnError 设置内部错误回调（如过期文件清理失败）
//
// 清理失败不影响写入，只通过回调通知。回调不得向同一轮转器写入数据。
func WithTimedOnError(fn func(error)) TimedOption {
	return func(c *timedConfig) {
		c.onError = fn
	}
}

// Timed 按时间周期轮转的文件写入器
//
// 当前文件名为 <dir>/<prefix>.<日期>[.<suffix>]，日期格式由 [DateLayout] 决定。
// 每次 Write 先用时钟判断是否越过边界，越过则切换文件并计算下一个边界。
// "检查边界、切换文件、写入"在同一把锁内完成，多个 goroutine 同时越过
// 同一边界时只会轮转一次。
type Timed struct {
	cfg    timedConfig
	dir    string
	prefix string

	mu       sync.Mutex
	segment  *segment
	filename string
	boundary time.Time
	bounded  bool // false 表示 PeriodNever，没有下一个边界

	closed atomic.Bool
}

// NewTimed 创建按时间轮转的文件写入器
//
// 参数:
//   - dir: 日志目录，不存在时自动创建（权限 0750）
//   - prefix: 文件名前缀，不能包含路径分隔符
//   - opts: 可选配置项
//
// 初始边界在构造时根据时钟计算一次。
func NewTimed(dir, prefix string, opts ...TimedOption) (*Timed, error) {
	if dir == "" {
		return nil, ErrEmptyDir
	}
	if prefix == "" {
		return nil, ErrEmptyPrefix
	}
	if strings.ContainsAny(prefix, `/\`) {
		return nil, fmt.Errorf("%w: %q contains a path separator", ErrInvalidPrefix, prefix)
	}

	cfg := timedConfig{
		period:   PeriodNever,
		maxSize:  DefaultSegmentMaxSizeMB,
		clock:    xclock.System(),
		location: time.UTC,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	cfg.clock = xclock.OrSystem(cfg.clock)

	if err := validateTimedConfig(&cfg); err != nil {
		return nil, err
	}

	// 用前缀拼出一个代表性文件路径做安全检查，目录本身不能是穿越路径
	base, err := xfile.SanitizePath(filepath.Join(dir, prefix))
	if err != nil {
		return nil, err
	}
	if err := xfile.EnsureDir(base); err != nil {
		return nil, err
	}

	r := &Timed{
		cfg:    cfg,
		dir:    filepath.Dir(base),
		prefix: prefix,
	}

	now := r.now()
	r.filename = r.nameFor(now)
	r.boundary, r.bounded = NextBoundary(cfg.period, now)
	r.segment = newSegment(r.filename, cfg.maxSize, cfg.location == time.Local)
	return r, nil
}

func validateTimedConfig(cfg *timedConfig) error {
	if !cfg.period.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidPeriod, int(cfg.period))
	}
	if cfg.maxFiles < 0 || cfg.maxFiles > maxFilesLimit {
		return fmt.Errorf("%w: got %d, want 0~%d", ErrInvalidMaxFiles, cfg.maxFiles, maxFilesLimit)
	}
	return validateSegmentSize(cfg.maxSize)
}

// now 返回配置时区下的当前时间
func (r *Timed) now() time.Time {
	return r.cfg.clock.Now().In(r.cfg.location)
}

// nameFor 返回 t 所在周期的文件路径
func (r *Timed) nameFor(t time.Time) string {
	name := r.prefix + "." + FormatDate(r.cfg.period, t)
	if r.cfg.suffix != "" {
		name += "." + r.cfg.suffix
	}
	return filepath.Join(r.dir, name)
}

// Write 实现 io.Writer，越过边界时先轮转再写入
func (r *Timed) Write(p []byte) (int, error) {
	if r.closed.Load() {
		return 0, ErrClosed
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// 加锁后复查，Close 可能在等锁期间完成
	if r.closed.Load() {
		return 0, ErrClosed
	}

	if r.bounded {
		if now := r.now(); !now.Before(r.boundary) {
			if err := r.rotateLocked(now); err != nil {
				return 0, err
			}
		}
	}
	return r.segment.Write(p)
}

// Rotate 立即切换到当前时间对应的文件
//
// 若当前时间对应的文件名与正在写入的相同（如 PeriodNever 或同一周期内），
// 交给 lumberjack 把当前文件改名为带时间戳的备份。
func (r *Timed) Rotate() error {
	if r.closed.Load() {
		return ErrClosed
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed.Load() {
		return ErrClosed
	}
	return r.rotateLocked(r.now())
}

// rotateLocked 执行一次轮转，调用方必须持有 r.mu
func (r *Timed) rotateLocked(now time.Time) error {
	oldName := r.filename
	newName := r.nameFor(now)

	if newName == oldName {
		if err := r.segment.rotate(); err != nil {
			return fmt.Errorf("xrotate: rotate %s: %w", oldName, err)
		}
	} else {
		if err := r.segment.switchTo(newName); err != nil {
			return fmt.Errorf("xrotate: close %s: %w", oldName, err)
		}
		r.filename = newName
	}
	r.boundary, r.bounded = NextBoundary(r.cfg.period, now)

	r.reportError(r.prune())
	if r.cfg.onRotate != nil {
		r.cfg.onRotate(oldName, newName)
	}
	return nil
}

// reportError 通过回调上报内部错误，回调 panic 被隔离
func (r *Timed) reportError(err error) {
	if err != nil && r.cfg.onError != nil {
		defer func() { recover() }() //nolint:errcheck // recover 返回值无需检查
		r.cfg.onError(err)
	}
}

// Close 关闭当前文件
//
// 设计决策: 与 Write/Rotate 共用一把锁，保证 Close 返回后不再有写入落到旧文件。
func (r *Timed) Close() error {
	if r.closed.Swap(true) {
		return ErrClosed
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.segment.Close()
}

// Filename 返回当前写入的文件路径
func (r *Timed) Filename() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filename
}

// NextBoundary 返回下一次自动轮转的时间点
//
// PeriodNever 返回 (time.Time{}, false)。
func (r *Timed) NextBoundary() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.boundary, r.bounded
}

// Period 返回轮转周期
func (r *Timed) Period() Period {
	return r.cfg.period
}
