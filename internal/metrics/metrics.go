package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
	OutcomeEmpty       = "empty"
	OutcomeSkipped     = "skipped"
)

var (
	HeadlineFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "headline_fetch_requests_total",
			Help: "Headline API requests by outcome",
		},
		[]string{"outcome"},
	)
	EnrichmentCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_requests_total",
			Help: "Enrichment service calls by service and outcome",
		},
		[]string{"service", "outcome"},
	)
	EnrichmentDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "enrichment_request_duration_seconds",
			Help:    "Duration of enrichment service calls",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s to ~51s
		},
		[]string{"service"},
	)
	PipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Pipeline stage executions by outcome",
		},
		[]string{"stage", "outcome"},
	)
	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cleaned_cache_hits_total",
			Help: "Headline requests served from the cleaned cache",
		},
	)
)

func init() {
	prometheus.MustRegister(HeadlineFetches, EnrichmentCalls, EnrichmentDuration, PipelineRuns, CacheHits)
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
