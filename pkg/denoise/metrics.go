package denoise

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors shared by every instrumented
// filter in a process. It is a package-level singleton, registered once
// against the default registry the first time it is needed, so that
// constructing many filters never tries to register the same collector
// twice.
type Metrics struct {
	EventsEvaluated *prometheus.CounterVec
	EventsRetained  *prometheus.CounterVec
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics returns the process-wide Metrics instance, creating it on
// first use.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = newMetrics()
	})
	return globalMetrics
}

func newMetrics() *Metrics {
	m := &Metrics{}

	m.EventsEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "denoise",
			Subsystem: "filter",
			Name:      "events_evaluated_total",
			Help:      "Total number of events offered to a filter's Evaluate.",
		},
		[]string{"filter"},
	)

	m.EventsRetained = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "denoise",
			Subsystem: "filter",
			Name:      "events_retained_total",
			Help:      "Total number of events a filter classified as signal.",
		},
		[]string{"filter"},
	)

	return m
}

// InstrumentedFilter wraps a Filter, counting every Evaluate call and
// every retained verdict under a fixed "filter" label.
type InstrumentedFilter struct {
	Filter
	name    string
	metrics *Metrics
}

// WithMetrics wraps f so every Evaluate call increments
// denoise_filter_events_evaluated_total{filter=name} and, on a signal
// verdict, denoise_filter_events_retained_total{filter=name}, against the
// process-wide Metrics singleton.
func WithMetrics(f Filter, name string) *InstrumentedFilter {
	return &InstrumentedFilter{Filter: f, name: name, metrics: GetMetrics()}
}

// Evaluate implements Filter, delegating to the wrapped filter and
// recording counters around the call.
func (i *InstrumentedFilter) Evaluate(e Event) bool {
	i.metrics.EventsEvaluated.WithLabelValues(i.name).Inc()
	isSignal := i.Filter.Evaluate(e)
	if isSignal {
		i.metrics.EventsRetained.WithLabelValues(i.name).Inc()
	}
	return isSignal
}
