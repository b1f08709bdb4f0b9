package logging

import (
	"context"
	"regexp"
	"unicode/utf8"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const maxIDLen = 128

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validID reports whether id is safe to copy into log fields. IDs arrive
// from request headers and config, so anything else is dropped.
func validID(id string) bool {
	return id != "" && len(id) <= maxIDLen && utf8.ValidString(id) && idPattern.MatchString(id)
}

type ctxKey int

const (
	viewerKey ctxKey = iota
	requestKey
)

// withID stores id under key, leaving ctx untouched for an invalid id.
func withID(ctx context.Context, key ctxKey, id string) context.Context {
	if !validID(id) {
		return ctx
	}
	return context.WithValue(ctx, key, id)
}

func idFrom(ctx context.Context, key ctxKey) string {
	id, _ := ctx.Value(key).(string)
	return id
}

// WithViewerID tags ctx with the signed-in user browsing the catalog.
func WithViewerID(ctx context.Context, id string) context.Context {
	return withID(ctx, viewerKey, id)
}

// ViewerIDFromContext returns the viewer id, or "".
func ViewerIDFromContext(ctx context.Context) string {
	return idFrom(ctx, viewerKey)
}

// WithRequestID tags ctx with an HTTP request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withID(ctx, requestKey, id)
}

// RequestIDFromContext returns the request id, or "".
func RequestIDFromContext(ctx context.Context) string {
	return idFrom(ctx, requestKey)
}

// ContextFields returns the correlation fields carried by ctx: the active
// span, the viewer and the request.
func ContextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()))
		if sc.IsSampled() {
			fields = append(fields, zap.Bool("trace_sampled", true))
		}
	}
	if id := ViewerIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("viewer.id", id))
	}
	if id := RequestIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("request.id", id))
	}
	return fields
}
