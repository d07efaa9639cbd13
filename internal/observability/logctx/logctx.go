// Package logctx carries a request- or event-scoped logger through a context.
package logctx

import (
	"context"

	"github.com/Zhima-Mochi/gamestore/internal/observability"
	"go.opentelemetry.io/otel/trace"
)

type loggerKey struct{}

// With stores logger on ctx. A nil logger leaves ctx unchanged.
func With(ctx context.Context, logger observability.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// From returns the logger stored on ctx, or nil.
func From(ctx context.Context) observability.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerKey{}).(observability.Logger)
	return logger
}

// FromOr returns the context logger, then fallback, then a no-op logger.
func FromOr(ctx context.Context, fallback observability.Logger) observability.Logger {
	if logger := From(ctx); logger != nil {
		return logger
	}
	if fallback == nil {
		return observability.NopLogger()
	}
	return fallback
}

// TraceFields returns trace_id and span_id for the span active on ctx, if any.
func TraceFields(ctx context.Context) []observability.Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []observability.Field{
		observability.F("trace_id", sc.TraceID().String()),
		observability.F("span_id", sc.SpanID().String()),
	}
}

// Enrich binds fields plus the active trace ids onto the context logger (or fallback)
// and stores the result back on the context.
func Enrich(ctx context.Context, fallback observability.Logger, fields ...observability.Field) (context.Context, observability.Logger) {
	logger := FromOr(ctx, fallback)
	all := append(append([]observability.Field(nil), fields...), TraceFields(ctx)...)
	if len(all) > 0 {
		logger = logger.With(all...)
	}
	return With(ctx, logger), logger
}
