package httppresentation

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Zhima-Mochi/gamestore/internal/observability"
	"github.com/Zhima-Mochi/gamestore/internal/observability/logctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// ObservabilityMiddleware combines:
// - W3C Trace Context extraction
// - request-scoped logger injection (dynamic fields only)
// - X-Request-ID generation + echo
// - HTTP metrics (counter + histogram) with low-cardinality labels
func ObservabilityMiddleware(
	base observability.Logger,
	requestID func(*http.Request) string,
	tel observability.Observability,
) func(http.Handler) http.Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	if base == nil {
		base = tel.Logger()
	}
	prop := otel.GetTextMapPropagator()
	requests := tel.Metrics().Counter(observability.MHTTPRequests)
	durations := tel.Metrics().Histogram(observability.MHTTPRequestDuration)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			rid := ""
			if requestID != nil {
				rid = requestID(r)
			}
			if rid == "" {
				rid = uuid.NewString()
			}
			w.Header().Set(headerRequestID, rid)

			ctx, _ = logctx.Enrich(ctx, base, observability.F("request_id", rid))

			start := time.Now()
			lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(lrw, r.WithContext(ctx))

			// The route template is only known once chi has matched the request.
			route := routeFromRequest(r)
			status := strconv.Itoa(lrw.status)
			requests.Add(1, observability.L("method", r.Method), observability.L("route", route), observability.L("status", status))
			durations.Observe(time.Since(start).Seconds(), observability.L("method", r.Method), observability.L("route", route), observability.L("status", status))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
