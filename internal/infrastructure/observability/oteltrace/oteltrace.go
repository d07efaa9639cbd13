package oteltrace

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/gamestore/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type tracer struct{ t trace.Tracer }

// New returns a Tracer bound to the global provider under the given instrumentation name.
func New(name string) observability.Tracer {
	if name == "" {
		name = "gamestore"
	}
	return &tracer{t: otel.Tracer(name)}
}

// NewFromProvider binds a Tracer to an explicit provider (tests use an in-memory recorder).
func NewFromProvider(tp trace.TracerProvider, name string) observability.Tracer {
	if name == "" {
		name = "gamestore"
	}
	return &tracer{t: tp.Tracer(name)}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name, trace.WithAttributes(attrs...))
}

// Setup installs the global W3C propagator and, when an OTLP endpoint is configured, an SDK
// tracer provider exporting over OTLP/HTTP. The exporter reads the standard OTEL_EXPORTER_OTLP_*
// variables. The returned shutdown func flushes pending spans.
func Setup(ctx context.Context, serviceName, env, endpoint string) (func(context.Context) error, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exp, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("oteltrace: otlp exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("deployment.environment", env),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
