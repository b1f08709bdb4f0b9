// Package telemetry sets up OpenTelemetry tracing and metrics for
// projectdeck and exports them over OTLP (grpc or http/protobuf).
//
// The catalog client traces each fetch under ScopeCatalog and the catalog
// server records request metrics under ScopeHTTP:
//
//	tel, err := telemetry.New(ctx, telemetry.FromSettings(cfg.Telemetry, version))
//	defer tel.Shutdown(ctx)
//	client := catalog.NewClient(ccfg, catalog.WithTracer(tel.Tracer(telemetry.ScopeCatalog)))
//
// Telemetry is off by default. When a provider cannot start, New still
// succeeds: callers get no-op tracers and meters and Health reports the
// reason.
//
// Tests use NewTestTelemetry, which records spans and metrics in memory.
package telemetry
