// Package observability wires OpenTelemetry tracing and metrics.
//
// Tracing and metrics stay on the global no-op providers until InitTracer
// and InitMeter install exporters, so instrumented code can run unchanged
// in tests:
//
//	id := observability.Identity{Service: "multimongo", Version: version.Version, Environment: "production"}
//	tp, err := observability.InitTracer(ctx, cfg, id)
//	defer tp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter(observability.InstrumentationName))
//	metrics.RecordCommand(ctx, "primary", "orders", "find", StatusOK, elapsed)
package observability
