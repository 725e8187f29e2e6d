package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for loads and evaluations.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Config contains configuration for metric registration.
type Config struct {
	// Namespace is the metric namespace prefix. Default: "themis"
	Namespace string

	// Subsystem is the metric subsystem. Default: "policy"
	Subsystem string
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() *Config {
	return &Config{
		Namespace: "themis",
		Subsystem: "policy",
	}
}

// PolicyMetrics tracks policy lifecycle and evaluation metrics.
type PolicyMetrics struct {
	// Policy load attempts by outcome
	loadsTotal *prometheus.CounterVec

	// Current policy version
	policyVersion prometheus.Gauge

	// Evaluator rebuilds across all workers
	compilesTotal prometheus.Counter

	// Evaluations by outcome
	evaluationsTotal *prometheus.CounterVec

	// Evaluation latency
	evaluationDuration prometheus.Histogram
}

// NewPolicyMetrics creates and registers policy metrics with the provided
// registry. A nil registry uses the default Prometheus registerer.
func NewPolicyMetrics(cfg *Config, registry *prometheus.Registry) *PolicyMetrics {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	pm := &PolicyMetrics{
		loadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "loads_total",
				Help:      "Total number of policy load attempts",
			},
			[]string{"outcome"},
		),

		policyVersion: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "version",
				Help:      "Version of the currently active policy (0 = never loaded)",
			},
		),

		compilesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "compiles_total",
				Help:      "Total number of per-worker evaluator rebuilds",
			},
		),

		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluations_total",
				Help:      "Total number of policy evaluations",
			},
			[]string{"outcome"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of policy evaluation in seconds",
				// Cached-evaluator calls are microseconds; rebuilds reach
				// tens of milliseconds.
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 16),
			},
		),
	}

	var reg prometheus.Registerer = prometheus.DefaultRegisterer
	if registry != nil {
		reg = registry
	}
	reg.MustRegister(
		pm.loadsTotal,
		pm.policyVersion,
		pm.compilesTotal,
		pm.evaluationsTotal,
		pm.evaluationDuration,
	)

	return pm
}

// RecordLoad records a policy load attempt. On success the version gauge is
// updated to the version the load published.
func (pm *PolicyMetrics) RecordLoad(outcome string, version uint64) {
	if pm == nil {
		return
	}
	pm.loadsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		pm.policyVersion.Set(float64(version))
	}
}

// RecordCompile records one evaluator rebuild.
func (pm *PolicyMetrics) RecordCompile() {
	if pm == nil {
		return
	}
	pm.compilesTotal.Inc()
}

// RecordEvaluation records one evaluation with its outcome and duration.
func (pm *PolicyMetrics) RecordEvaluation(outcome string, duration time.Duration) {
	if pm == nil {
		return
	}
	pm.evaluationsTotal.WithLabelValues(outcome).Inc()
	pm.evaluationDuration.Observe(duration.Seconds())
}

// Handler returns an http.Handler serving the registry in the Prometheus
// exposition format. A nil registry serves the default gatherer.
func Handler(registry *prometheus.Registry) http.Handler {
	if registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
