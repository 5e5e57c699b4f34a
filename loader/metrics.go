package loader

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for catalog loading.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	ItemsLoaded     prometheus.Counter
	RetriesTotal    prometheus.Counter
	ErrorsTotal     *prometheus.CounterVec
}

// NewMetrics constructs the loader metrics and registers them on reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kitfinder_loader_requests_total",
			Help: "Total catalog fetch attempts.",
		},
		[]string{"phase"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kitfinder_loader_request_duration_seconds",
			Help:    "Catalog fetch latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	items := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kitfinder_loader_items_total",
			Help: "Total raw catalog records decoded.",
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kitfinder_loader_retries_total",
			Help: "Total number of fetch retries scheduled.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kitfinder_loader_errors_total",
			Help: "Total number of catalog load errors by type.",
		},
		[]string{"error_type"},
	)

	if reg != nil {
		reg.MustRegister(requests, requestDuration, items, retries, errorsTotal)
	}

	return &Metrics{
		RequestsTotal:   requests,
		RequestDuration: requestDuration,
		ItemsLoaded:     items,
		RetriesTotal:    retries,
		ErrorsTotal:     errorsTotal,
	}
}

// IncRequest increments the requests counter for a phase.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveDuration records a fetch duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// AddItems adds n decoded records.
func (m *Metrics) AddItems(n int) {
	if m == nil {
		return
	}
	m.ItemsLoaded.Add(float64(n))
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
