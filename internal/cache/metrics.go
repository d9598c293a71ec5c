package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRecorder records cache-level outcomes: response cache hits and
// misses, and failed computations. Mirrors the summarizer package's
// recorder-interface pattern.
type MetricsRecorder interface {
	RecordHit()
	RecordMiss()
	RecordComputeError()
}

// PrometheusCacheMetrics implements MetricsRecorder with Prometheus
// counters.
type PrometheusCacheMetrics struct {
	hits   prometheus.Counter
	misses prometheus.Counter
	errors prometheus.Counter
}

var (
	prometheusCacheMetricsInstance *PrometheusCacheMetrics
	prometheusCacheMetricsOnce     sync.Once
)

// NewPrometheusCacheMetrics returns the process-wide cache metrics
// recorder, creating and registering it on first call.
func NewPrometheusCacheMetrics() *PrometheusCacheMetrics {
	prometheusCacheMetricsOnce.Do(func() {
		prometheusCacheMetricsInstance = &PrometheusCacheMetrics{
			hits: promauto.NewCounter(prometheus.CounterOpts{
				Name: "qa_cache_hits_total",
				Help: "Number of QA requests served from the response cache",
			}),
			misses: promauto.NewCounter(prometheus.CounterOpts{
				Name: "qa_cache_misses_total",
				Help: "Number of QA requests that required computing an answer",
			}),
			errors: promauto.NewCounter(prometheus.CounterOpts{
				Name: "qa_cache_compute_errors_total",
				Help: "Number of QA requests whose computation failed and were not cached",
			}),
		}
	})
	return prometheusCacheMetricsInstance
}

func (p *PrometheusCacheMetrics) RecordHit()          { p.hits.Inc() }
func (p *PrometheusCacheMetrics) RecordMiss()         { p.misses.Inc() }
func (p *PrometheusCacheMetrics) RecordComputeError() { p.errors.Inc() }

type noopMetrics struct{}

func (noopMetrics) RecordHit()          {}
func (noopMetrics) RecordMiss()         {}
func (noopMetrics) RecordComputeError() {}
