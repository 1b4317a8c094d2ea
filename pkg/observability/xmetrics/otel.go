package xmetrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultInstrumentationName = "github.com/omeyang/xlogpipe/xlog"

	// 指标名称
	MetricDispatched    = "xlog.records.dispatched"
	MetricRejected      = "xlog.records.rejected"
	MetricAppenderError = "xlog.appender.errors"
	MetricRotations     = "xlog.file.rotations"

	// AttrAppender appender 名称属性
	AttrAppender = "appender"
)

type otelConfig struct {
	instrumentationName string
	meterProvider       metric.MeterProvider
}

// Option 定义 OTel Recorder 的配置选项。
type Option func(*otelConfig)

// WithInstrumentationName 设置 OTel instrumentation 名称。
func WithInstrumentationName(name string) Option {
	return func(cfg *otelConfig) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithMeterProvider 设置 MeterProvider，默认 otel.GetMeterProvider()。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

// NewOTel 创建基于 OpenTelemetry 的 Recorder。
func NewOTel(opts ...Option) (Recorder, error) {
	cfg := &otelConfig{
		instrumentationName: defaultInstrumentationName,
		meterProvider:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		if opt == nil {
			return nil, ErrNilOption
		}
		opt(cfg)
	}

	meter := cfg.meterProvider.Meter(cfg.instrumentationName)

	r := &otelRecorder{}
	counters := []struct {
		target *metric.Int64Counter
		name   string
		desc   string
	}{
		{&r.dispatched, MetricDispatched, "records written by an appender"},
		{&r.rejected, MetricRejected, "records rejected by a filter or sampler"},
		{&r.errors, MetricAppenderError, "appender write failures"},
		{&r.rotations, MetricRotations, "file rotations"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit("1"),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCreateCounter, c.name, err)
		}
		*c.target = counter
	}
	return r, nil
}

type otelRecorder struct {
	dispatched metric.Int64Counter
	rejected   metric.Int64Counter
	errors     metric.Int64Counter
	rotations  metric.Int64Counter
}

// add 使用不可取消的 context 记录指标，请求 context 已取消时指标仍然计入。
func add(ctx context.Context, c metric.Int64Counter, appender string) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.Add(context.WithoutCancel(ctx), 1,
		metric.WithAttributes(attribute.String(AttrAppender, appender)))
}

func (r *otelRecorder) Dispatched(ctx context.Context, appender string) {
	add(ctx, r.dispatched, appender)
}

func (r *otelRecorder) Rejected(ctx context.Context, appender string) {
	add(ctx, r.rejected, appender)
}

func (r *otelRecorder) AppenderError(ctx context.Context, appender string) {
	add(ctx, r.errors, appender)
}

func (r *otelRecorder) Rotated(ctx context.Context, appender string) {
	add(ctx, r.rotations, appender)
}
