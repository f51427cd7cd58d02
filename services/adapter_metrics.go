package services

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/NomadCrew/nomad-crew-planner/errors"
)

// AdapterMetrics counts calls to the external producers by outcome.
type AdapterMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var (
	adapterMetricsInstance *AdapterMetrics
	adapterMetricsOnce     sync.Once
	adapterDefaultRegistry = prometheus.DefaultRegisterer
)

// NewAdapterMetrics returns the process-wide adapter metrics.
func NewAdapterMetrics() *AdapterMetrics {
	adapterMetricsOnce.Do(func() {
		adapterMetricsInstance = NewAdapterMetricsWithRegistry(adapterDefaultRegistry)
	})
	return adapterMetricsInstance
}

// NewAdapterMetricsWithRegistry registers a fresh set on reg.
func NewAdapterMetricsWithRegistry(reg prometheus.Registerer) *AdapterMetrics {
	return &AdapterMetrics{
		requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "planner_adapter_requests_total",
			Help: "External adapter calls by adapter and outcome",
		}, []string{"adapter", "outcome"}),
		latency: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "planner_adapter_request_duration_seconds",
			Help:    "Time spent waiting for external adapters",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"adapter"}),
	}
}

// resetAdapterMetricsForTesting resets the metrics singleton for test isolation.
func resetAdapterMetricsForTesting() {
	adapterDefaultRegistry = prometheus.NewRegistry()
	adapterMetricsInstance = nil
	adapterMetricsOnce = sync.Once{}
}

// observe records one call. A nil receiver is a no-op.
func (m *AdapterMetrics) observe(adapter string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.latency.WithLabelValues(adapter).Observe(time.Since(start).Seconds())
	m.requests.WithLabelValues(adapter, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.IsType(err, errors.TimeoutError):
		return "timeout"
	case errors.IsType(err, errors.ParseError):
		return "parse_error"
	case errors.IsType(err, errors.ConflictError):
		return "superseded"
	default:
		return "service_error"
	}
}
