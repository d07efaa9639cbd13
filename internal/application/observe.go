package application

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/gamestore/internal/observability"
	"github.com/Zhima-Mochi/gamestore/internal/observability/logctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const spanPrefix = "UC."

// Instrumentation holds the RED instruments and base logger shared by the use cases of one service.
type Instrumentation struct {
	tracer observability.Tracer
	// Base logger with fixed fields prebound (vendor must remain hidden).
	log observability.Logger
	// RED metrics (supplied via DI; do not instantiate inside methods).
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
}

func NewInstrumentation(service string, tel observability.Observability) Instrumentation {
	if tel == nil {
		tel = observability.Nop()
	}
	return Instrumentation{
		tracer:       tel.Tracer(),
		log:          tel.Logger().With(observability.F("service", service)),
		reqCounter:   tel.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: tel.Metrics().Histogram(observability.MUsecaseDuration),
	}
}

// Run tracks one use case execution from Begin to End.
type Run struct {
	useCase string
	span    trace.Span
	start   time.Time
	logger  observability.Logger
	in      Instrumentation

	Outcome string
	Status  string
	fields  []observability.Field
}

// Begin starts the span and binds a use_case-scoped logger into the returned context.
func (in Instrumentation) Begin(ctx context.Context, useCase, spanName string, attrs ...attribute.KeyValue) (context.Context, *Run) {
	attrs = append([]attribute.KeyValue{attribute.String("use_case", useCase)}, attrs...)
	ctx, span := in.tracer.Start(ctx, spanPrefix+spanName, attrs...)

	ctx, logger := logctx.Enrich(ctx, in.log, observability.F("use_case", useCase))

	return ctx, &Run{
		useCase: useCase,
		span:    span,
		start:   time.Now(),
		logger:  logger,
		in:      in,
		Outcome: OutcomeSuccess,
		Status:  "OK",
	}
}

func (r *Run) Logger() observability.Logger { return r.logger }

// Fail marks the run as an error with a machine-readable status.
func (r *Run) Fail(status string) {
	r.Outcome, r.Status = OutcomeError, status
}

// Reject marks the run as refused by a business rule.
func (r *Run) Reject(status string) {
	r.Outcome, r.Status = OutcomeRejected, status
}

// With adds fields to the use_case_done line.
func (r *Run) With(fields ...observability.Field) {
	r.fields = append(r.fields, fields...)
}

// End closes the span, records RED metrics and writes the use_case_done line.
func (r *Run) End(err error) {
	lat := time.Since(r.start).Seconds()

	if r.span != nil {
		if err != nil {
			r.span.RecordError(err)
		}
		if r.Outcome == OutcomeSuccess {
			r.span.SetStatus(codes.Ok, r.Status)
		} else {
			r.span.SetStatus(codes.Error, r.Status)
		}
		r.span.End()
	}

	if r.in.reqCounter != nil {
		r.in.reqCounter.Add(1,
			observability.L("use_case", r.useCase),
			observability.L("outcome", r.Outcome),
		)
	}
	if r.in.durHistogram != nil {
		r.in.durHistogram.Observe(lat,
			observability.L("use_case", r.useCase),
		)
	}

	fields := []observability.Field{
		observability.F("outcome", r.Outcome),
		observability.F("status", r.Status),
		observability.F("latency_seconds", lat),
	}
	fields = append(fields, r.fields...)
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}
	if r.Outcome == OutcomeError {
		r.logger.Error("use_case_done", fields...)
		return
	}
	r.logger.Info("use_case_done", fields...)
}
