package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label names
const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelOperation = "operation"
	LabelOutcome   = "outcome"
)

// Outcome label values
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gacha_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gacha_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)
)

// Query Metrics
var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gacha_queries_total",
			Help: "Odds queries evaluated, by operation and outcome",
		},
		[]string{LabelOperation, LabelOutcome},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gacha_query_duration_seconds",
			Help:    "Time spent propagating distributions or sampling",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{LabelOperation},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gacha_result_cache_lookups_total",
			Help: "Result cache lookups by outcome (hit/miss)",
		},
		[]string{LabelOutcome},
	)

	ProfileReloads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gacha_profile_reloads_total",
			Help: "Profile invalidations triggered by file changes",
		},
	)
)
