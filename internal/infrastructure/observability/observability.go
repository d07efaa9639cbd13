package observability

import (
	"maps"

	"github.com/Zhima-Mochi/gamestore/internal/observability"
)

// provider is the Observability handed to every component of the store.
type provider struct {
	tracer  observability.Tracer
	logger  observability.Logger
	metrics instruments
}

func (p provider) Tracer() observability.Tracer   { return p.tracer }
func (p provider) Logger() observability.Logger   { return p.logger }
func (p provider) Metrics() observability.Metrics { return p.metrics }

// instruments resolves metric keys to registered instruments. Unknown keys get no-ops,
// so a component never has to care whether a metric was wired.
type instruments struct {
	counters   map[observability.MetricKey]observability.Counter
	histograms map[observability.MetricKey]observability.Histogram
}

func (m instruments) Counter(name observability.MetricKey) observability.Counter {
	if c, ok := m.counters[name]; ok {
		return c
	}
	return observability.NopCounter()
}

func (m instruments) Histogram(name observability.MetricKey) observability.Histogram {
	if h, ok := m.histograms[name]; ok {
		return h
	}
	return observability.NopHistogram()
}

// New assembles an Observability provider backed by the supplied tracer, logger, and metric instruments.
// Nil parts fall back to no-ops.
func New(
	tracer observability.Tracer,
	logger observability.Logger,
	counters map[observability.MetricKey]observability.Counter,
	histograms map[observability.MetricKey]observability.Histogram,
) observability.Observability {
	if tracer == nil {
		tracer = observability.NopTracer()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return provider{
		tracer: tracer,
		logger: logger,
		metrics: instruments{
			counters:   withoutNil(counters),
			histograms: withoutNil(histograms),
		},
	}
}

func withoutNil[V any](in map[observability.MetricKey]V) map[observability.MetricKey]V {
	out := maps.Clone(in)
	maps.DeleteFunc(out, func(_ observability.MetricKey, v V) bool { return any(v) == nil })
	return out
}
