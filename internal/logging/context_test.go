package logging

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestContextFields_Empty(t *testing.T) {
	assert.Empty(t, ContextFields(context.Background()))
}

func TestContextFields_Span(t *testing.T) {
	provider := trace.NewTracerProvider(
		trace.WithSampler(trace.AlwaysSample()),
		trace.WithSyncer(tracetest.NewInMemoryExporter()),
	)
	ctx, span := provider.Tracer("test").Start(context.Background(), "catalog.FetchProjects")
	defer span.End()

	fields := fieldMap(ContextFields(ctx))

	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"].String)
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"].String)
	assert.Contains(t, fields, "trace_sampled")
}

func TestContextFields_ViewerAndRequest(t *testing.T) {
	ctx := WithViewerID(context.Background(), "u_42")
	ctx = WithRequestID(ctx, "QmZ4x7Yc0a9")

	fields := fieldMap(ContextFields(ctx))

	assert.Equal(t, "u_42", fields["viewer.id"].String)
	assert.Equal(t, "QmZ4x7Yc0a9", fields["request.id"].String)
}

func TestWithID_DropsInvalid(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"empty", ""},
		{"space", "u 42"},
		{"slash", "a/b"},
		{"newline", "req\nforged=1"},
		{"too long", strings.Repeat("a", maxIDLen+1)},
		{"invalid utf8", "\xff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithRequestID(context.Background(), tt.id)
			ctx = WithViewerID(ctx, tt.id)
			assert.Empty(t, RequestIDFromContext(ctx))
			assert.Empty(t, ViewerIDFromContext(ctx))
		})
	}
}

func TestWithID_InvalidKeepsPrevious(t *testing.T) {
	ctx := WithRequestID(context.Background(), "first")
	ctx = WithRequestID(ctx, "bad id")
	assert.Equal(t, "first", RequestIDFromContext(ctx))
}

func fieldMap(fields []zap.Field) map[string]zap.Field {
	m := make(map[string]zap.Field, len(fields))
	for _, f := range fields {
		m[f.Key] = f
	}
	return m
}
