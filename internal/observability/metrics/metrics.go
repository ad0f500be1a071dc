package metrics

import "github.com/prometheus/client_golang/prometheus"

// TourMetrics exposes counters/histograms for the tour submission flow.
type TourMetrics struct {
	submissionsTotal   *prometheus.CounterVec
	conflictChecks     *prometheus.CounterVec
	submitLatency      prometheus.Histogram
	cacheInvalidations prometheus.Counter
}

func NewTourMetrics(reg prometheus.Registerer) *TourMetrics {
	m := &TourMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openhaus",
			Subsystem: "tours",
			Name:      "submissions_total",
			Help:      "Total tour request submissions by outcome",
		}, []string{"outcome"}),
		conflictChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openhaus",
			Subsystem: "tours",
			Name:      "conflict_checks_total",
			Help:      "Total conflict pre-checks by result",
		}, []string{"result"}),
		submitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "openhaus",
			Subsystem: "tours",
			Name:      "submit_latency_seconds",
			Help:      "Latency of the tour submission pipeline",
			Buckets:   prometheus.DefBuckets,
		}),
		cacheInvalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "openhaus",
			Subsystem: "tours",
			Name:      "cache_invalidations_total",
			Help:      "Total cached tour view invalidations",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.conflictChecks, m.submitLatency, m.cacheInvalidations)
	return m
}

func (m *TourMetrics) ObserveSubmission(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
	m.submitLatency.Observe(seconds)
}

func (m *TourMetrics) ObserveConflictCheck(result string) {
	if m == nil {
		return
	}
	m.conflictChecks.WithLabelValues(result).Inc()
}

func (m *TourMetrics) ObserveCacheInvalidation() {
	if m == nil {
		return
	}
	m.cacheInvalidations.Inc()
}
