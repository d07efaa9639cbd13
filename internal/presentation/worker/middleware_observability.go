package workerpresentation

import (
	"context"
	"time"

	domoutbox "github.com/Zhima-Mochi/gamestore/internal/domain/outbox"
	"github.com/Zhima-Mochi/gamestore/internal/observability"
	"github.com/Zhima-Mochi/gamestore/internal/observability/logctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const spanPrefix = "Worker."

// WithEventContext injects a request-scoped logger for background/worker executions.
// Dynamic fields only: trace_id/span_id (if valid), event_id (generated if empty),
// plus caller-provided low-cardinality attributes (e.g. "component", "event").
func WithEventContext(
	ctx context.Context,
	base observability.Logger,
	tel observability.Observability,
	traceID trace.TraceID,
	spanID trace.SpanID,
	attrs map[string]string, // keep this low-cardinality: event name, component, queue, etc.
) context.Context {
	if base == nil {
		if tel == nil {
			tel = observability.Nop()
		}
		base = tel.Logger()
	}

	if attrs == nil {
		attrs = make(map[string]string)
	}

	fields := make([]observability.Field, 0, 6)

	// Prefer a stable, human-pivotable ID for the event
	evtID := attrs["event_id"]
	if evtID == "" {
		evtID = uuid.NewString()
	}
	fields = append(fields, observability.F("event_id", evtID))

	if traceID.IsValid() {
		fields = append(fields, observability.F("trace_id", traceID.String()))
	}
	if spanID.IsValid() {
		fields = append(fields, observability.F("span_id", spanID.String()))
	}

	for k, v := range attrs {
		if k == "event_id" || v == "" {
			continue
		}
		fields = append(fields, observability.F(k, v))
	}

	reqLogger := base.With(fields...)
	return logctx.With(ctx, reqLogger)
}

// ObserveHandler wraps an event handler with a span and an event-scoped logger,
// and writes one event_handled line per delivery.
func ObserveHandler(tel observability.Observability, component string) func(domoutbox.Handler) domoutbox.Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	tracer := tel.Tracer()
	base := tel.Logger()

	return func(next domoutbox.Handler) domoutbox.Handler {
		return func(ctx context.Context, e domoutbox.Event) error {
			start := time.Now()
			name := e.EventName()
			ctx, span := tracer.Start(ctx, spanPrefix+component,
				attribute.String("event.name", name),
				attribute.String("worker.component", component),
			)
			defer span.End()

			attrs := map[string]string{"event": name, "component": component}
			if id, ok := e.(domoutbox.Identified); ok {
				attrs["event_id"] = id.ID()
			}
			sc := span.SpanContext()
			ctx = WithEventContext(ctx, logctx.FromOr(ctx, base), tel, sc.TraceID(), sc.SpanID(), attrs)
			logger := logctx.FromOr(ctx, base)

			err := next(ctx, e)
			lat := time.Since(start).Seconds()
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "HANDLER_FAILED")
				logger.Warn("event_handled",
					observability.F("outcome", "error"),
					observability.F("latency_seconds", lat),
					observability.Err(err),
				)
				return err
			}
			span.SetStatus(codes.Ok, "OK")
			logger.Info("event_handled",
				observability.F("outcome", "success"),
				observability.F("latency_seconds", lat),
			)
			return nil
		}
	}
}
