// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "followup_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "followup_http_request_duration_seconds",
			Help:    "Duration of HTTP request handling in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 25, 60},
		},
		[]string{"route"},
	)

	// CompletionRequests counts provider calls by outcome:
	// success, cache_hit, http_error, timeout, network_error, decode_error.
	CompletionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "followup_completion_requests_total",
			Help: "Total number of chat-completion requests by outcome",
		},
		[]string{"outcome"},
	)

	CompletionRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "followup_completion_retries_total",
			Help: "Total number of chat-completion retries",
		},
	)

	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "followup_completion_duration_seconds",
			Help:    "Duration of chat-completion calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 25},
		},
		[]string{"outcome"},
	)

	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "followup_cache_operations_total",
			Help: "Response cache operations by backend, operation and result",
		},
		[]string{"backend", "op", "result"},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "followup_cache_entries",
			Help: "Current number of entries in the response cache",
		},
		[]string{"backend"},
	)

	NormalizationStages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "followup_normalization_stage_total",
			Help: "Which parse stage produced the candidates",
		},
		[]string{"stage"},
	)

	BackfilledQuestions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "followup_backfilled_questions_total",
			Help: "Questions relabeled from a synonym or synthesized from a template",
		},
		[]string{"source"},
	)
)
