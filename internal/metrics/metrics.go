// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "journal"

var (
	StoreUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "uploads_total",
		Help:      "Content store uploads by result.",
	}, []string{"result"})

	StoreRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "upload_retries_total",
		Help:      "Upload attempts repeated by the retry policy.",
	})

	MetadataFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "metadata_fetches_total",
		Help:      "Metadata document lookups by source (cache, gateway) and result.",
	}, []string{"source", "result"})

	ChainCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chain",
		Name:      "calls_total",
		Help:      "Registry calls by method and result.",
	}, []string{"method", "result"})

	Mints = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chain",
		Name:      "mints_total",
		Help:      "Mint attempts by outcome.",
	}, []string{"outcome"})

	AggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "aggregator",
		Name:      "pass_duration_seconds",
		Help:      "Duration of one aggregation pass.",
		Buckets:   prometheus.DefBuckets,
	})

	AggregatedEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "aggregator",
		Name:      "entries",
		Help:      "Entries in the last aggregation pass, split by metadata resolution.",
	}, []string{"resolved"})

	StaleViews = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "view",
		Name:      "stale_results_total",
		Help:      "Aggregation results discarded because a newer pass already applied.",
	})

	EligibilityState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "eligibility",
		Name:      "state",
		Help:      "1 for the current guard state, 0 otherwise.",
	}, []string{"state"})
)

// Result maps an error to the "ok" / "error" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "code"})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Write requests rejected by the per-IP limiter.",
	})

	AccessDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "access_denied_total",
		Help:      "Requests refused by the host or CIDR filters.",
	}, []string{"rule"})
)
