package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	setOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corpusd",
			Name:      "set_operations_total",
			Help:      "Total number of document set operations",
		},
		[]string{"kind", "status"},
	)

	backendSearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "corpusd",
			Name:      "backend_search_duration_seconds",
			Help:      "Full-text backend search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	coverageSelectedTerms = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "corpusd",
			Name:      "coverage_selected_terms",
			Help:      "Number of terms selected per exhaustive coverage run",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	coverageFraction = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "corpusd",
			Name:      "coverage_fraction",
			Help:      "Fraction of the target set covered per exhaustive coverage run",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		},
	)
)

func init() {
	prometheus.MustRegister(setOperationsTotal)
	prometheus.MustRegister(backendSearchDuration)
	prometheus.MustRegister(coverageSelectedTerms)
	prometheus.MustRegister(coverageFraction)
}

// ObserveSetOperation counts one set operation by kind and outcome.
func ObserveSetOperation(kind string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	setOperationsTotal.WithLabelValues(kind, status).Inc()
}

// ObserveBackendSearch records the duration of one backend search call.
func ObserveBackendSearch(start time.Time) {
	backendSearchDuration.Observe(time.Since(start).Seconds())
}

// ObserveCoverageRun records the outcome of one exhaustive coverage run.
func ObserveCoverageRun(selectedTerms, coveredCount, targetSize int) {
	coverageSelectedTerms.Observe(float64(selectedTerms))
	if targetSize > 0 {
		coverageFraction.Observe(float64(coveredCount) / float64(targetSize))
	}
}
