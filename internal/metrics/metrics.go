package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resultados posibles de una llamada a un proveedor.
const (
	OutcomeSuccess     = "success"
	OutcomeTimeout     = "timeout"
	OutcomeUnavailable = "unavailable"
	OutcomeRejected    = "rejected"
)

var (
	// CacheLookups cuenta evaluaciones del cache por estado resultante.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_cache_lookups_total",
			Help: "Total number of cache evaluations by resulting state",
		},
		[]string{"state"}, // fresh_hit, stale, partial, miss, forced
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_upstream_requests_total",
			Help: "Total number of calls to external providers",
		},
		[]string{"provider", "operation", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insight_upstream_request_duration_seconds",
			Help:    "Latency of calls to external providers",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"provider", "operation"},
	)

	// AnalysisFallbacks cuenta los analisis reemplazados por el documento por defecto.
	AnalysisFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_analysis_fallbacks_total",
			Help: "Total number of summarizer results replaced by the fallback analysis",
		},
		[]string{"reason"}, // llm_error, parse_error
	)

	PersistenceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_persistence_failures_total",
			Help: "Total number of non-fatal cache write failures",
		},
		[]string{"operation"}, // upsert_profile, overwrite_profile, insert_analysis
	)

	ForceRefreshThrottled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insight_force_refresh_throttled_total",
			Help: "Total number of force refresh requests downgraded by the refresh budget",
		},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insight_pipeline_duration_seconds",
			Help:    "End to end duration of an analyze request by cache state",
			Buckets: []float64{.05, .25, 1, 5, 15, 30, 45, 60, 90, 120},
		},
		[]string{"state"},
	)

	// SharedRequests cuenta requests que reutilizaron un pipeline en curso para la misma clave.
	SharedRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insight_shared_requests_total",
			Help: "Total number of requests served by an in-flight pipeline for the same key",
		},
	)
)

// ObserveUpstream registra el resultado y la latencia de una llamada a un proveedor.
func ObserveUpstream(provider, operation, outcome string, started time.Time) {
	UpstreamRequests.WithLabelValues(provider, operation, outcome).Inc()
	UpstreamDuration.WithLabelValues(provider, operation).Observe(time.Since(started).Seconds())
}
