package xmetrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMeterProvider 创建用于测试的 MeterProvider
func newTestMeterProvider(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

// counterValue 读取指定指标在 appender 属性下的累计值
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name, appender string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s should be an int64 sum", name)
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(attribute.Key(AttrAppender)); ok && v.AsString() == appender {
					return dp.Value
				}
			}
		}
	}
	return 0
}

func TestNewOTel_Default(t *testing.T) {
	rec, err := NewOTel()
	require.NoError(t, err)
	require.NotNil(t, rec)
}

func TestNewOTel_NilOption(t *testing.T) {
	_, err := NewOTel(nil)
	assert.ErrorIs(t, err, ErrNilOption)
}

func TestOTelRecorder_Counters(t *testing.T) {
	mp, reader := newTestMeterProvider(t)
	rec, err := NewOTel(WithMeterProvider(mp), WithInstrumentationName("test"))
	require.NoError(t, err)

	ctx := context.Background()
	rec.Dispatched(ctx, "console")
	rec.Dispatched(ctx, "console")
	rec.Dispatched(ctx, "file")
	rec.Rejected(ctx, ScopeLogger)
	rec.AppenderError(ctx, "file")
	rec.Rotated(ctx, "file")

	tests := []struct {
		name     string
		metric   string
		appender string
		want     int64
	}{
		{"console 写入", MetricDispatched, "console", 2},
		{"file 写入", MetricDispatched, "file", 1},
		{"logger 级拒绝", MetricRejected, ScopeLogger, 1},
		{"file 失败", MetricAppenderError, "file", 1},
		{"file 轮转", MetricRotations, "file", 1},
		{"未记录的组合", MetricRotations, "console", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, counterValue(t, reader, tt.metric, tt.appender))
		})
	}
}

func TestOTelRecorder_CanceledContext(t *testing.T) {
	mp, reader := newTestMeterProvider(t)
	rec, err := NewOTel(WithMeterProvider(mp))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Dispatched(ctx, "console")
	//nolint:staticcheck // 验证 nil ctx 不会 panic
	rec.Dispatched(nil, "console")

	assert.Equal(t, int64(2), counterValue(t, reader, MetricDispatched, "console"))
}

func TestNoop(t *testing.T) {
	rec := Noop()
	assert.NotPanics(t, func() {
		rec.Dispatched(context.Background(), "a")
		rec.Rejected(context.Background(), "a")
		rec.AppenderError(context.Background(), "a")
		rec.Rotated(context.Background(), "a")
	})
}

func TestOrNoop(t *testing.T) {
	assert.Equal(t, Noop(), OrNoop(nil))

	mp, _ := newTestMeterProvider(t)
	rec, err := NewOTel(WithMeterProvider(mp))
	require.NoError(t, err)
	assert.Same(t, rec, OrNoop(rec))
}
