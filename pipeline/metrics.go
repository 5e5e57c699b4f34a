package pipeline

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles Prometheus collectors for derivation.
type Metrics struct {
	DerivedTotal   prometheus.Counter
	DuplicateSlugs prometheus.Counter
}

// NewMetrics constructs the pipeline metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	derived := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kitfinder_pipeline_kits_derived_total",
		Help: "Total raw records derived into kits.",
	})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kitfinder_pipeline_duplicate_slugs_total",
		Help: "Total kits renamed because their slug was already taken.",
	})
	if reg != nil {
		reg.MustRegister(derived, duplicates)
	}
	return &Metrics{DerivedTotal: derived, DuplicateSlugs: duplicates}
}

// IncDerived increments the derived counter.
func (m *Metrics) IncDerived() {
	if m == nil {
		return
	}
	m.DerivedTotal.Inc()
}

// IncDuplicate increments the duplicate slug counter.
func (m *Metrics) IncDuplicate() {
	if m == nil {
		return
	}
	m.DuplicateSlugs.Inc()
}
