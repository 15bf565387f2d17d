package loader

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for validation runs in watch mode.
type Metrics struct {
	// Runs counts validation runs by result.
	Runs *prometheus.CounterVec

	// Documents counts parsed documents by kind.
	Documents *prometheus.CounterVec

	// IssueCount counts reported issues by severity.
	IssueCount *prometheus.CounterVec

	// RunDuration observes full load-and-validate runs.
	RunDuration prometheus.Histogram
}

// NewMetrics registers and returns the loader metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ubispec_validation_runs_total",
			Help: "Total validation runs by result",
		}, []string{"result"}), // result: "ok", "blocking"

		Documents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ubispec_documents_total",
			Help: "Total parsed documents by kind",
		}, []string{"kind"}),

		IssueCount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ubispec_issues_total",
			Help: "Total reported issues by severity",
		}, []string{"severity"}),

		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ubispec_run_duration_seconds",
			Help:    "Duration of full load-and-validate runs",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// ObserveRun records one completed run.
func (m *Metrics) ObserveRun(result *Result, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if result.Report.HasBlocking() {
		outcome = "blocking"
	}
	m.Runs.WithLabelValues(outcome).Inc()
	for _, f := range result.Files {
		m.Documents.WithLabelValues(string(f.Kind)).Inc()
	}
	for severity, count := range result.Report.Counts() {
		m.IssueCount.WithLabelValues(string(severity)).Add(float64(count))
	}
	m.RunDuration.Observe(d.Seconds())
}
