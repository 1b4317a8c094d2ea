package xlog

import (
	"fmt"
	"strings"
	"time"

	"github.com/omeyang/xlogpipe/pkg/config/xconf"
	"github.com/omeyang/xlogpipe/pkg/observability/xclock"
	"github.com/omeyang/xlogpipe/pkg/observability/xmetrics"
	"github.com/omeyang/xlogpipe/pkg/observability/xrotate"
	"github.com/omeyang/xlogpipe/pkg/observability/xsampling"
)

// appender 类型
const (
	AppenderStdout = "stdout"
	AppenderStderr = "stderr"
	AppenderFile   = "file"
)

// 布局格式
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config 日志配置
//
//	log:
//	  level: debug
//	  enrich: true
//	  appenders:
//	    - name: console
//	      type: stderr
//	      level: info
//	    - name: app
//	      type: file
//	      dir: /var/log/app
//	      prefix: app
//	      suffix: log
//	      period: hourly
//	      max_files: 24
//	      sample_rate: 0.1
type Config struct {
	// Level Logger 级上限，空表示不限制
	Level string `koanf:"level"`

	// Enrich 注入 OpenTelemetry trace_id、span_id
	Enrich bool `koanf:"enrich"`

	// DisableSource 不记录调用方位置
	DisableSource bool `koanf:"disable_source"`

	Appenders []AppenderConfig `koanf:"appenders"`
}

// AppenderConfig 单个 appender 的配置
type AppenderConfig struct {
	Name string `koanf:"name"`

	// Type stdout | stderr | file
	Type string `koanf:"type"`

	// Level appender 自身的级别上限，空表示不限制
	Level string `koanf:"level"`

	// Target 只接收 Target 以此为前缀的记录
	Target string `koanf:"target"`

	// Format text | json，默认 text
	Format string `koanf:"format"`

	// NoColor 关闭文本布局的级别着色，文件 appender 始终不着色
	NoColor bool `koanf:"no_color"`

	// TimeZone 布局和文件命名使用的时区："+08:00"、"UTC"、"Local" 或 IANA 名称
	TimeZone string `koanf:"time_zone"`

	// SampleRate 对比 SampleAbove 更啰嗦的记录按比例保留
	//
	// 不设置表示不采样；0 表示全部丢弃，1 表示全部保留。
	SampleRate *float64 `koanf:"sample_rate"`

	// SampleEvery 对比 SampleAbove 更啰嗦的记录，每个 Target 每 N 条保留 1 条
	//
	// 0 表示不使用，不能与 SampleRate 同时设置。
	SampleEvery int `koanf:"sample_every"`

	// SampleAbove 采样门槛，默认 info，即只对 Debug、Trace 采样
	SampleAbove string `koanf:"sample_above"`

	// SampleByTarget 配合 SampleRate，按 Target 一致性采样，同一模块的记录整体保留或整体丢弃
	SampleByTarget bool `koanf:"sample_by_target"`

	// 以下仅对 file 类型有效

	Dir       string `koanf:"dir"`
	Prefix    string `koanf:"prefix"`
	Suffix    string `koanf:"suffix"`
	Period    string `koanf:"period"`
	MaxFiles  int    `koanf:"max_files"`
	MaxSizeMB int    `koanf:"max_size_mb"`

	// LocalTime 未设置 TimeZone 时，文件命名使用本地时区而非 UTC
	LocalTime bool `koanf:"local_time"`
}

// ConfigOption FromConfig 的附加选项，作用于构建出的每个 appender
type ConfigOption func(*configOptions)

type configOptions struct {
	clock    xclock.Clock
	recorder xmetrics.Recorder
}

// WithConfigClock 设置所有 appender 的时钟（测试用）
func WithConfigClock(c xclock.Clock) ConfigOption {
	return func(o *configOptions) {
		o.clock = c
	}
}

// WithConfigRecorder 设置 Logger 和所有 appender 的指标记录器
func WithConfigRecorder(r xmetrics.Recorder) ConfigOption {
	return func(o *configOptions) {
		o.recorder = r
	}
}

// FromConfig 从 xconf 读取 path 下的日志配置并返回构建器
//
// 返回的 Builder 已添加配置中的全部 appender，调用方可以继续设置
// OnError 等选项后再 Build。配置错误记录在 Builder 中，由 Build 返回。
func FromConfig(cfg xconf.Config, path string, opts ...ConfigOption) *Builder {
	b := New()
	if cfg == nil {
		b.err = fmt.Errorf("%w: nil xconf.Config", ErrInvalidConfig)
		return b
	}
	var c Config
	if err := cfg.Unmarshal(path, &c); err != nil {
		b.err = err
		return b
	}
	return c.Builder(opts...)
}

// Builder 按配置创建构建器
func (c Config) Builder(opts ...ConfigOption) *Builder {
	var o configOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	b := New().
		SetEnrich(c.Enrich).
		SetAddSource(!c.DisableSource).
		SetRecorder(o.recorder)
	if strings.TrimSpace(c.Level) != "" {
		b.SetLevelString(c.Level)
	}
	if len(c.Appenders) == 0 {
		b.err = fmt.Errorf("%w: no appenders", ErrInvalidConfig)
		return b
	}
	for i, ac := range c.Appenders {
		if b.err != nil {
			break
		}
		a, err := ac.build(o)
		if err != nil {
			b.err = fmt.Errorf("appenders[%d]: %w", i, err)
			break
		}
		b.AddAppender(a)
	}
	return b
}

func (ac AppenderConfig) build(o configOptions) (Appender, error) {
	kind := strings.ToLower(strings.TrimSpace(ac.Type))
	name := ac.Name
	if name == "" {
		name = kind
	}

	loc, err := ParseLocation(ac.TimeZone)
	if err != nil {
		return nil, err
	}

	appOpts := []AppenderOption{WithClock(o.clock), WithRecorder(o.recorder)}
	if ac.Level != "" {
		ceiling, err := ParseLevelFilter(ac.Level)
		if err != nil {
			return nil, err
		}
		appOpts = append(appOpts, WithMaxLevel(ceiling))
	}
	if ac.Target != "" {
		appOpts = append(appOpts, WithFilters(TargetPrefix(ac.Target)))
	}
	if ac.SampleRate != nil || ac.SampleEvery != 0 {
		sampling, err := ac.sampling()
		if err != nil {
			return nil, err
		}
		appOpts = append(appOpts, sampling)
	}

	noColor := ac.NoColor || kind == AppenderFile
	layout, err := buildLayout(ac.Format, loc, noColor)
	if err != nil {
		return nil, err
	}
	appOpts = append(appOpts, WithLayout(layout))

	switch kind {
	case AppenderStdout:
		a := Stdout(appOpts...)
		a.name = name
		return a, nil
	case AppenderStderr:
		a := Stderr(appOpts...)
		a.name = name
		return a, nil
	case AppenderFile:
		rotation, err := ac.rotation(loc)
		if err != nil {
			return nil, err
		}
		return NewRollingFileAppender(name, ac.Dir, ac.Prefix, rotation, appOpts...)
	default:
		return nil, fmt.Errorf("%w: unknown appender type %q", ErrInvalidConfig, ac.Type)
	}
}

func (ac AppenderConfig) rotation(loc *time.Location) ([]xrotate.TimedOption, error) {
	period, err := xrotate.ParsePeriod(ac.Period)
	if err != nil {
		return nil, err
	}
	switch {
	case loc != nil:
	case ac.LocalTime:
		loc = time.Local
	default:
		loc = time.UTC
	}
	return []xrotate.TimedOption{
		xrotate.WithPeriod(period),
		xrotate.WithSuffix(ac.Suffix),
		xrotate.WithMaxFiles(ac.MaxFiles),
		xrotate.WithSegmentMaxSize(ac.MaxSizeMB),
		xrotate.WithLocation(loc),
	}, nil
}

func (ac AppenderConfig) sampling() (AppenderOption, error) {
	above := LevelInfo.Filter()
	if ac.SampleAbove != "" {
		var err error
		if above, err = ParseLevelFilter(ac.SampleAbove); err != nil {
			return nil, err
		}
	}

	var sampler xsampling.Sampler
	switch {
	case ac.SampleRate != nil && ac.SampleEvery != 0:
		return nil, fmt.Errorf("%w: sample_rate and sample_every are mutually exclusive", ErrInvalidConfig)
	case ac.SampleEvery != 0:
		s, err := xsampling.NewCountSampler(ac.SampleEvery)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		sampler = s
	case *ac.SampleRate == 0:
		sampler = xsampling.Never()
	case ac.SampleByTarget:
		s, err := xsampling.NewKeyBasedSampler(*ac.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		sampler = s
	default:
		s, err := xsampling.NewRateSampler(*ac.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		sampler = s
	}
	return WithSampling(sampler, above), nil
}

func buildLayout(format string, loc *time.Location, noColor bool) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return &TextLayout{Location: loc, NoColor: noColor}, nil
	case FormatJSON:
		return &JSONLayout{Location: loc}, nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, format)
	}
}

// ParseLocation 解析时区配置，空串返回 nil 表示使用默认值
//
// 支持 "+08:00"/"-0530"/"Z" 形式的固定偏移、"UTC"、"Local" 以及 IANA 名称。
// 非法值返回包装了 [ErrInvalidConfig] 的错误。
func ParseLocation(s string) (*time.Location, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, nil
	case strings.EqualFold(s, "local"):
		return time.Local, nil
	case strings.EqualFold(s, "utc"), s == "Z":
		return time.UTC, nil
	case s[0] == '+' || s[0] == '-':
		for _, layout := range []string{"-07:00", "-0700", "-07"} {
			if t, err := time.Parse(layout, s); err == nil {
				_, offset := t.Zone()
				return time.FixedZone(s, offset), nil
			}
		}
		return nil, fmt.Errorf("%w: invalid time zone offset %q", ErrInvalidConfig, s)
	default:
		loc, err := time.LoadLocation(s)
		if err != nil {
			return nil, fmt.Errorf("%w: time zone %q: %w", ErrInvalidConfig, s, err)
		}
		return loc, nil
	}
}
