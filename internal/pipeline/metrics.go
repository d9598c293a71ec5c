package pipeline

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StageMetricsRecorder records per-stage outcomes for one ingestion run.
// Stage is one of "fetch", "summarize", "ingest". Implementations must be
// safe for concurrent use: Run invokes these from inside the bounded
// fan-out goroutines.
type StageMetricsRecorder interface {
	RecordStageOutcome(stage string, success bool)
	RecordRunDuration(duration time.Duration)
	RecordIngested(count int)
}

// PrometheusStageMetrics implements StageMetricsRecorder with Prometheus
// collectors, mirroring the summarizer package's singleton-registration
// pattern so repeated construction across tests never double-registers.
type PrometheusStageMetrics struct {
	outcomes      *prometheus.CounterVec
	runDuration   prometheus.Histogram
	ingestedGauge prometheus.Gauge
}

var (
	prometheusStageMetricsInstance *PrometheusStageMetrics
	prometheusStageMetricsOnce     sync.Once
)

// NewPrometheusStageMetrics returns the process-wide stage metrics
// recorder, creating and registering it on first call.
func NewPrometheusStageMetrics() *PrometheusStageMetrics {
	prometheusStageMetricsOnce.Do(func() {
		prometheusStageMetricsInstance = &PrometheusStageMetrics{
			outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "ingestion_stage_outcomes_total",
				Help: "Count of per-item stage outcomes during ingestion runs, by stage and result",
			}, []string{"stage", "result"}),
			runDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "ingestion_run_duration_seconds",
				Help:    "Wall-clock duration of one ingestion run",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			}),
			ingestedGauge: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "ingestion_run_ingested_posts",
				Help: "Number of posts successfully ingested in the most recent run",
			}),
		}
	})
	return prometheusStageMetricsInstance
}

func (p *PrometheusStageMetrics) RecordStageOutcome(stage string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	p.outcomes.WithLabelValues(stage, result).Inc()
}

func (p *PrometheusStageMetrics) RecordRunDuration(duration time.Duration) {
	p.runDuration.Observe(duration.Seconds())
}

func (p *PrometheusStageMetrics) RecordIngested(count int) {
	p.ingestedGauge.Set(float64(count))
}

// noopMetrics discards everything. Used when Deps.Metrics is nil so Run
// never has to branch on its presence.
type noopMetrics struct{}

func (noopMetrics) RecordStageOutcome(string, bool) {}
func (noopMetrics) RecordRunDuration(time.Duration) {}
func (noopMetrics) RecordIngested(int)              {}
