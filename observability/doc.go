// Package observability sets up OpenTelemetry tracing and metrics and records
// formatted error responses on spans and counters.
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("errdemo"))
//	defer tp.Shutdown(ctx)
//
//	metrics, err := observability.NewErrorMetrics(observability.Meter("errdemo"))
package observability
