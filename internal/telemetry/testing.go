package telemetry

import (
	"context"
	"slices"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// TestTelemetry records spans and metrics in memory.
type TestTelemetry struct {
	*Telemetry

	SpanRecorder *tracetest.SpanRecorder
	Reader       *sdkmetric.ManualReader
}

// NewTestTelemetry returns an enabled Telemetry backed by in-memory
// recorders. Nothing leaves the process.
func NewTestTelemetry() *TestTelemetry {
	cfg := NewDefaultConfig()
	cfg.Enabled = true

	rec := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()
	return &TestTelemetry{
		Telemetry: &Telemetry{
			config:         cfg,
			tracerProvider: trace.NewTracerProvider(trace.WithSpanProcessor(rec)),
			meterProvider:  sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
		},
		SpanRecorder: rec,
		Reader:       reader,
	}
}

// Spans returns the ended spans.
func (t *TestTelemetry) Spans() []trace.ReadOnlySpan {
	return t.SpanRecorder.Ended()
}

// SpanByName returns the first ended span called name.
func (t *TestTelemetry) SpanByName(name string) trace.ReadOnlySpan {
	spans := t.Spans()
	if i := slices.IndexFunc(spans, func(s trace.ReadOnlySpan) bool { return s.Name() == name }); i >= 0 {
		return spans[i]
	}
	return nil
}

// AssertSpanExists fails tb unless a span called name has ended.
func (t *TestTelemetry) AssertSpanExists(tb testing.TB, name string) {
	tb.Helper()
	if t.SpanByName(name) != nil {
		return
	}
	var names []string
	for _, s := range t.Spans() {
		names = append(names, s.Name())
	}
	tb.Errorf("span %q not recorded; have %v", name, names)
}

// AssertSpanAttribute fails tb unless the named span carries key=want.
// Integers compare as int64.
func (t *TestTelemetry) AssertSpanAttribute(tb testing.TB, spanName, key string, want any) {
	tb.Helper()
	span := t.SpanByName(spanName)
	if span == nil {
		tb.Fatalf("span %q not recorded", spanName)
	}
	i := slices.IndexFunc(span.Attributes(), func(kv attribute.KeyValue) bool { return string(kv.Key) == key })
	if i < 0 {
		tb.Errorf("span %q has no attribute %q", spanName, key)
		return
	}
	if got := span.Attributes()[i].Value.AsInterface(); got != want {
		tb.Errorf("span %q attribute %q = %v, want %v", spanName, key, got, want)
	}
}

// Reset drops recorded spans.
func (t *TestTelemetry) Reset() {
	fresh := tracetest.NewSpanRecorder()
	t.tracerProvider.RegisterSpanProcessor(fresh)
	t.tracerProvider.UnregisterSpanProcessor(t.SpanRecorder)
	t.SpanRecorder = fresh
}

// MetricByName collects from the reader and returns the named metric.
func (t *TestTelemetry) MetricByName(ctx context.Context, name string) (metricdata.Metrics, bool) {
	var rm metricdata.ResourceMetrics
	if err := t.Reader.Collect(ctx, &rm); err != nil {
		return metricdata.Metrics{}, false
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}
