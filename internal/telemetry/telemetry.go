package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Instrumentation scopes used by projectdeck components.
const (
	ScopeCatalog = "github.com/fyrsmithlabs/projectdeck/internal/catalog"
	ScopeHTTP    = "github.com/fyrsmithlabs/projectdeck/internal/http"
)

// Telemetry owns the trace and metric providers for one process.
//
// A provider that fails to start is left nil and its callers fall back to
// the global no-op implementation; the failure is reported via Health.
type Telemetry struct {
	config *Config

	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	logProvider    log.LoggerProvider

	mu       sync.RWMutex
	stopped  bool
	failures []string
}

// New starts the providers described by cfg. A disabled config yields an
// instance that only hands out no-op tracers and meters.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}
	t := &Telemetry{config: cfg}
	if !cfg.Enabled {
		return t, nil
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	res, err := newResource(cfg)
	if err != nil {
		t.fail("resource", err)
		return t, nil
	}

	if tp, err := newTracerProvider(ctx, cfg, res, o); err != nil {
		t.fail("tracer provider", err)
	} else {
		t.tracerProvider = tp
		otel.SetTracerProvider(tp)
	}

	if mp, err := newMeterProvider(ctx, cfg, res, o); err != nil {
		t.fail("meter provider", err)
	} else if mp != nil {
		t.meterProvider = mp
		otel.SetMeterProvider(mp)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return t, nil
}

// Tracer returns a tracer for scope, or the global one when tracing is off.
func (t *Telemetry) Tracer(scope string, opts ...oteltrace.TracerOption) oteltrace.Tracer {
	if t == nil || t.tracerProvider == nil {
		return otel.GetTracerProvider().Tracer(scope, opts...)
	}
	return t.tracerProvider.Tracer(scope, opts...)
}

// Meter returns a meter for scope, or the global one when metrics are off.
func (t *Telemetry) Meter(scope string, opts ...metric.MeterOption) metric.Meter {
	if t == nil || t.meterProvider == nil {
		return otel.GetMeterProvider().Meter(scope, opts...)
	}
	return t.meterProvider.Meter(scope, opts...)
}

// LoggerProvider returns the provider for the zap bridge. Nil unless one
// was attached with SetLoggerProvider.
func (t *Telemetry) LoggerProvider() log.LoggerProvider {
	if t == nil {
		return nil
	}
	return t.logProvider
}

// SetLoggerProvider attaches a log provider for the zap bridge.
func (t *Telemetry) SetLoggerProvider(lp log.LoggerProvider) {
	if t != nil {
		t.logProvider = lp
	}
}

// Shutdown flushes and stops every provider. Without a deadline on ctx the
// configured shutdown timeout applies. Calling it twice is a no-op.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return nil
	}
	t.stopped = true
	t.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok && t.config != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.Shutdown.Timeout.Duration())
		defer cancel()
	}
	return t.each(ctx, "shutdown",
		func(ctx context.Context) error { return t.tracerProvider.Shutdown(ctx) },
		func(ctx context.Context) error { return t.meterProvider.Shutdown(ctx) },
	)
}

// ForceFlush exports everything buffered so far.
func (t *Telemetry) ForceFlush(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.each(ctx, "flush",
		func(ctx context.Context) error { return t.tracerProvider.ForceFlush(ctx) },
		func(ctx context.Context) error { return t.meterProvider.ForceFlush(ctx) },
	)
}

// each runs the trace step then the metric step, skipping providers that
// never started.
func (t *Telemetry) each(ctx context.Context, op string, traceStep, meterStep func(context.Context) error) error {
	var errs []error
	if t.tracerProvider != nil {
		if err := traceStep(ctx); err != nil {
			errs = append(errs, fmt.Errorf("trace %s: %w", op, err))
		}
	}
	if t.meterProvider != nil {
		if err := meterStep(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter %s: %w", op, err))
		}
	}
	return errors.Join(errs...)
}

// HealthStatus reports whether providers came up.
type HealthStatus struct {
	Healthy  bool
	Degraded bool
	Reason   string
}

// Health reports provider state. Healthy turns false after Shutdown.
func (t *Telemetry) Health() HealthStatus {
	if t == nil {
		return HealthStatus{Degraded: true}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	var reason string
	for i, f := range t.failures {
		if i > 0 {
			reason += "; "
		}
		reason += f
	}
	return HealthStatus{
		Healthy:  !t.stopped,
		Degraded: len(t.failures) > 0,
		Reason:   reason,
	}
}

// IsEnabled reports whether telemetry is configured on and still running.
func (t *Telemetry) IsEnabled() bool {
	if t == nil || t.config == nil {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.config.Enabled && !t.stopped
}

func (t *Telemetry) fail(component string, err error) {
	t.mu.Lock()
	t.failures = append(t.failures, fmt.Sprintf("%s failed: %v", component, err))
	t.mu.Unlock()
}
