package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// aggregation pipeline.
type Metrics struct {
	RowsLoaded      prometheus.Counter
	RowsExcluded    prometheus.Counter
	RowsTrimmed     prometheus.Counter
	PipelineRunning prometheus.Gauge

	// Budget controller metrics.
	AggregationAttempts prometheus.Counter
	AttemptDuration     prometheus.Histogram
	BudgetExhausted     prometheus.Counter

	// Artifact metrics.
	FeaturesEmitted prometheus.Gauge
	ArtifactBytes   prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "heatmap_etl",
			Name:      "rows_loaded_total",
			Help:      "Total CSV data rows read from the input file.",
		}),
		RowsExcluded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "heatmap_etl",
			Name:      "rows_excluded_total",
			Help:      "Total rows dropped by the validity filter.",
		}),
		RowsTrimmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "heatmap_etl",
			Name:      "rows_trimmed_total",
			Help:      "Total valid rows dropped by the min-year floor.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "heatmap_etl",
			Name:      "pipeline_running",
			Help:      "1 while an aggregation run is active, 0 otherwise.",
		}),
		AggregationAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "heatmap_etl",
			Name:      "aggregation_attempts_total",
			Help:      "Aggregation passes made by the budget controller, including coarsening retries.",
		}),
		AttemptDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "heatmap_etl",
			Name:      "aggregation_attempt_duration_seconds",
			Help:      "Duration of a single aggregate-serialize-measure pass.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		BudgetExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "heatmap_etl",
			Name:      "budget_exhausted_total",
			Help:      "Runs that hit the coarsening bound and accepted an oversized artifact.",
		}),
		FeaturesEmitted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "heatmap_etl",
			Name:      "features_emitted",
			Help:      "Features in the accepted artifact.",
		}),
		ArtifactBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "heatmap_etl",
			Name:      "artifact_bytes",
			Help:      "Serialized size of the accepted artifact in bytes.",
		}),
	}

	prometheus.MustRegister(
		m.RowsLoaded,
		m.RowsExcluded,
		m.RowsTrimmed,
		m.PipelineRunning,
		m.AggregationAttempts,
		m.AttemptDuration,
		m.BudgetExhausted,
		m.FeaturesEmitted,
		m.ArtifactBytes,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RowsLoaded:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "heatmap_etl", Name: "rows_loaded_total"}),
		RowsExcluded:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "heatmap_etl", Name: "rows_excluded_total"}),
		RowsTrimmed:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "heatmap_etl", Name: "rows_trimmed_total"}),
		PipelineRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "heatmap_etl", Name: "pipeline_running"}),
		AggregationAttempts: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "heatmap_etl", Name: "aggregation_attempts_total"}),
		AttemptDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "heatmap_etl", Name: "aggregation_attempt_duration_seconds"}),
		BudgetExhausted:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "heatmap_etl", Name: "budget_exhausted_total"}),
		FeaturesEmitted:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "heatmap_etl", Name: "features_emitted"}),
		ArtifactBytes:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "heatmap_etl", Name: "artifact_bytes"}),
	}
}
