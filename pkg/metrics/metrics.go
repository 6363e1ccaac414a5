package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/haugen/internal/contracts"
)

// Recorder exposes stage counters through Prometheus
// ⭐ SSOT: 단계별 처리 건수 메트릭은 여기서만
//
// Each Recorder owns its registry so several recorders (tests, API server)
// can coexist in one process.
type Recorder struct {
	registry  *prometheus.Registry
	processed *prometheus.CounterVec
	succeeded *prometheus.CounterVec
	skipped   *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// New creates a Recorder with its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		processed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "haugen_stage_tickers_processed_total",
				Help: "Tickers handed to a stage",
			},
			[]string{"stage"},
		),
		succeeded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "haugen_stage_tickers_succeeded_total",
				Help: "Tickers written to a stage output",
			},
			[]string{"stage"},
		),
		skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "haugen_stage_tickers_skipped_total",
				Help: "Tickers dropped by a soft miss",
			},
			[]string{"stage", "reason"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "haugen_stage_failures_total",
				Help: "Stages aborted by a contract violation",
			},
			[]string{"stage"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "haugen_stage_duration_seconds",
				Help:    "Stage wall time in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}

	r.registry.MustRegister(r.processed, r.succeeded, r.skipped, r.failures, r.duration)
	return r
}

// RecordSummary adds a finished stage's counts
func (r *Recorder) RecordSummary(s contracts.StageSummary) {
	if r == nil {
		return
	}
	r.processed.WithLabelValues(s.Stage).Add(float64(s.Processed))
	r.succeeded.WithLabelValues(s.Stage).Add(float64(s.Succeeded))
	for reason, n := range s.SkipReasons {
		r.skipped.WithLabelValues(s.Stage, reason).Add(float64(n))
	}
	r.duration.WithLabelValues(s.Stage).Observe(s.Duration.Seconds())
}

// RecordFailure counts an aborted stage
func (r *Recorder) RecordFailure(stage string) {
	if r == nil {
		return
	}
	r.failures.WithLabelValues(stage).Inc()
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
