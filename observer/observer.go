// Package observer provides OpenTelemetry tracing and Prometheus metrics for
// the plantagent workflow coordinator.
//
// Init configures a trace provider exporting over OTLP/HTTP, using standard
// OTEL_EXPORTER_OTLP_* env vars. NewTracer and NewNodeMetrics hand the resulting
// instruments to a Coordinator via WithTracer/WithMetrics.
package observer

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const scopeName = "github.com/plantagent/core/observer"

// Init sets up an OTEL trace provider with an OTLP/HTTP exporter and installs
// it as the global provider. Returns a shutdown function that must be called
// on application exit.
func Init(ctx context.Context) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName("plantagent")),
		resource.WithFromEnv(),
	)
	if err != nil {
		return nil, err
	}

	traceExp, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
