package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// MetadataFetchLatency tracks the latency of metadata retrieval
	MetadataFetchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "manup",
			Subsystem: "metadata",
			Name:      "fetch_latency_seconds",
			Help:      "Time spent retrieving policy metadata",
		},
		[]string{"source"},
	)

	// MetadataFetchErrors tracks failed metadata retrievals
	MetadataFetchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "manup",
			Subsystem: "metadata",
			Name:      "fetch_errors_total",
			Help:      "Number of metadata retrieval errors",
		},
		[]string{"error_type"},
	)

	// CacheFallbacks counts fetches answered from the cache after a remote failure
	CacheFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "manup",
			Subsystem: "metadata",
			Name:      "cache_fallbacks_total",
			Help:      "Number of fetches that fell back to cached metadata",
		},
	)

	// CacheWriteErrors tracks swallowed cache write failures
	CacheWriteErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "manup",
			Subsystem: "cache",
			Name:      "write_errors_total",
			Help:      "Number of metadata cache writes that failed",
		},
		[]string{"backend"},
	)

	// GateDecisions counts evaluated decisions
	GateDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "manup",
			Subsystem: "gate",
			Name:      "decisions_total",
			Help:      "Number of decisions reached by the gate",
		},
		[]string{"decision"},
	)

	// GateRuns counts finished gate runs by result
	GateRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "manup",
			Subsystem: "gate",
			Name:      "runs_total",
			Help:      "Number of gate runs by how they ended",
		},
		[]string{"result"},
	)
)

// MustRegister registers all metrics with the default Prometheus registry
func MustRegister() {
	prometheus.MustRegister(
		MetadataFetchLatency,
		MetadataFetchErrors,
		CacheFallbacks,
		CacheWriteErrors,
		GateDecisions,
		GateRuns,
	)
}
