package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tradeanalyser"

// Lookup outcomes.
const (
	OutcomeResults = "results"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
)

// Recorder collects client side metrics. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	lookups  *prometheus.CounterVec
	stale    *prometheus.CounterVec
}

// New registers the collectors with reg. Pass prometheus.NewRegistry() in
// tests to keep them isolated.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Requests sent to the analysis service",
			},
			[]string{"endpoint", "status"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Latency of requests to the analysis service",
				Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"endpoint"},
		),
		lookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lookups_total",
				Help:      "Search lookups by outcome",
			},
			[]string{"mode", "outcome"},
		),
		stale: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stale_responses_total",
				Help:      "Completions discarded because a newer request superseded them",
			},
			[]string{"kind"},
		),
	}
}

// ObserveRequest implements dataflows.Observer.
func (r *Recorder) ObserveRequest(endpoint string, status int, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	label := strconv.Itoa(status)
	if err != nil {
		label = "transport_error"
	}
	r.requests.WithLabelValues(endpoint, label).Inc()
	r.latency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// RecordLookup counts a search by mode ("incremental" or "submit").
func (r *Recorder) RecordLookup(mode, outcome string) {
	if r == nil {
		return
	}
	r.lookups.WithLabelValues(mode, outcome).Inc()
}

// RecordStale counts a discarded completion ("search" or "analyze").
func (r *Recorder) RecordStale(kind string) {
	if r == nil {
		return
	}
	r.stale.WithLabelValues(kind).Inc()
}

// StaleCounter exposes the stale counter for assertions.
func (r *Recorder) StaleCounter(kind string) prometheus.Counter {
	return r.stale.WithLabelValues(kind)
}
