package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/gamestore/internal/domain/payment"
	"github.com/Zhima-Mochi/gamestore/internal/observability"
	"github.com/Zhima-Mochi/gamestore/internal/observability/logctx"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrUnavailable is returned without calling the provider while its breaker is open.
var ErrUnavailable = payment.ErrProviderUnavailable

type Settings struct {
	// Timeout is how long the breaker stays open before letting a trial request through.
	Timeout time.Duration
	// MaxFailures consecutive failures open the breaker.
	MaxFailures uint32
}

func DefaultSettings() Settings {
	return Settings{Timeout: 30 * time.Second, MaxFailures: 5}
}

// Guard wraps every call to one provider with a circuit breaker, a span, and
// external_requests metrics.
type Guard struct {
	peer    string
	cb      *gobreaker.CircuitBreaker[any]
	log     observability.Logger
	tracer  observability.Tracer
	calls   observability.Counter
	latency observability.Histogram
}

func NewGuard(peer string, s Settings, tel observability.Observability) *Guard {
	if tel == nil {
		tel = observability.Nop()
	}
	if s.MaxFailures == 0 {
		s.MaxFailures = DefaultSettings().MaxFailures
	}
	log := tel.Logger().With(observability.F("component", "payment_provider"), observability.F("peer", peer))
	g := &Guard{
		peer:    peer,
		log:     log,
		tracer:  tel.Tracer(),
		calls:   tel.Metrics().Counter(observability.MExternalRequests),
		latency: tel.Metrics().Histogram(observability.MExternalRequestDuration),
	}
	maxFailures := s.MaxFailures
	g.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        peer,
		MaxRequests: 1,
		Timeout:     s.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit_breaker_state_changed",
				observability.F("from", from.String()),
				observability.F("to", to.String()),
			)
		},
	})
	return g
}

func (g *Guard) Peer() string { return g.peer }

// State reports the breaker state: "closed", "half-open" or "open".
func (g *Guard) State() string { return g.cb.State().String() }

// Call runs fn through the guard. A nil guard calls fn directly.
func Call[T any](ctx context.Context, g *Guard, endpoint string, fn func(context.Context) (T, error)) (T, error) {
	if g == nil {
		return fn(ctx)
	}

	ctx, span := g.tracer.Start(ctx, "External."+g.peer+"."+endpoint,
		attribute.String("peer.service", g.peer),
		attribute.String("endpoint", endpoint),
	)
	defer span.End()
	start := time.Now()

	v, err := g.cb.Execute(func() (any, error) {
		return fn(ctx)
	})

	outcome := "success"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "rejected"
		err = fmt.Errorf("%w: %s: %w", ErrUnavailable, g.peer, err)
	case err != nil:
		outcome = "error"
	}

	g.calls.Add(1,
		observability.L("peer", g.peer),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	g.latency.Observe(time.Since(start).Seconds(),
		observability.L("peer", g.peer),
		observability.L("endpoint", endpoint),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		logctx.FromOr(ctx, g.log).Warn("provider_call_failed",
			observability.F("peer", g.peer),
			observability.F("endpoint", endpoint),
			observability.F("outcome", outcome),
			observability.Err(err),
		)
		var zero T
		return zero, err
	}
	span.SetStatus(codes.Ok, outcome)
	res, _ := v.(T)
	return res, nil
}
