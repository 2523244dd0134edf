// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

// Package metrics provides Prometheus collectors for the search engine.
//
// Metrics are exposed at the /metrics endpoint in Prometheus text format.
// Collectors are registered via promauto at package load; components record
// observations directly through the exported variables.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Search façade metrics.

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "End-to-end search latency in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Total search requests",
		},
		[]string{"cache_hit"}, // "true" / "false"
	)

	SearchResultsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_results_returned",
			Help:    "Number of results returned per search",
			Buckets: []float64{0, 1, 5, 10, 20, 30, 50},
		},
	)

	// Retrieval tier metrics.

	TierCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retrieval_tier_candidates_total",
			Help: "Candidates produced per retrieval tier",
		},
		[]string{"tier"},
	)

	TierFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retrieval_tier_failures_total",
			Help: "Tier executions that failed and degraded to zero candidates",
		},
		[]string{"tier"},
	)

	FallbackActivations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retrieval_fallback_activations_total",
			Help: "Times the fallback tier ran because all prior tiers were empty",
		},
	)

	// ExhaustedFallbacks counts the degenerate path where even the fallback
	// tier produced nothing and an empty result reached the caller.
	ExhaustedFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retrieval_exhausted_fallbacks_total",
			Help: "Searches that returned empty because every tier and the fallback failed",
		},
	)

	// Intent parser metrics.

	IntentParses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_parses_total",
			Help: "Intent parses by outcome",
		},
		[]string{"source"}, // "cache", "heuristic", "augmented"
	)

	// Vector searcher metrics.

	EmbeddingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embedding_failures_total",
			Help: "Query embedding calls that failed",
		},
	)

	VectorSearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vector_search_duration_seconds",
			Help:    "Vector similarity search latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	// Cache metrics.

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Cache hits by named cache and level",
		},
		[]string{"cache", "level"}, // level: "l1" / "l2"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Cache misses by named cache",
		},
		[]string{"cache"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "L1 evictions by named cache",
		},
		[]string{"cache"},
	)

	CacheBackendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_backend_errors_total",
			Help: "L2 backend failures (cache degraded to L1-only for the operation)",
		},
		[]string{"cache", "op"}, // op: "get" / "set"
	)

	// Circuit breaker metrics.

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// HTTP surface metrics.

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)
