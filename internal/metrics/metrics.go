// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Training outcomes.
const (
	TrainingPublished = "published"
	TrainingSkipped   = "skipped"
	TrainingFailed    = "failed"
	TrainingBusy      = "busy"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors, not-found lookups excluded",
		},
		[]string{"operation"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Recommendation Metrics
	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_request_duration_seconds",
			Help:    "Time to produce a recommendation list",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"kind"}, // venues, users, groups, compatibility
	)

	RecommendResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_results",
			Help:    "Number of results returned per recommendation request",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"kind"},
	)

	RecommendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_errors_total",
			Help: "Recommendation requests that failed",
		},
		[]string{"kind"},
	)

	// Ranker Metrics
	RankerTrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranker_training_runs_total",
			Help: "Ranker training attempts by outcome",
		},
		[]string{"outcome"}, // published, skipped, failed, busy
	)

	RankerTrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranker_training_duration_seconds",
			Help:    "Duration of ranker training runs that reached the fitting stage",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	RankerTrainingSamples = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ranker_training_samples",
			Help: "Labeled samples seen by the most recent training attempt",
		},
	)

	RankerModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ranker_model_version",
			Help: "Version of the active ranker model (0 = heuristic only)",
		},
	)

	RankerSnapshotOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranker_snapshot_operations_total",
			Help: "Model snapshot store operations",
		},
		[]string{"operation", "result"}, // save|load|prune, success|failure
	)

	// Cache Metrics
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Data source cache lookups",
		},
		[]string{"cache_type", "result"}, // hit, miss
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordDBQuery records one DuckDB query. Pass countErr=false for errors
// that are part of normal operation, such as a missing row.
func RecordDBQuery(operation string, duration time.Duration, err error, countErr bool) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil && countErr {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records one recommendation request of the given kind.
func RecordRecommendation(kind string, duration time.Duration, results int, err error) {
	RecommendDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if err != nil {
		RecommendErrors.WithLabelValues(kind).Inc()
		return
	}
	RecommendResults.WithLabelValues(kind).Observe(float64(results))
}

// RecordTraining records a training attempt. samples < 0 leaves the sample
// gauge untouched (the attempt never got that far).
func RecordTraining(outcome string, duration time.Duration, samples int) {
	RankerTrainingRuns.WithLabelValues(outcome).Inc()
	if outcome == TrainingPublished || outcome == TrainingSkipped {
		RankerTrainingDuration.Observe(duration.Seconds())
	}
	if samples >= 0 {
		RankerTrainingSamples.Set(float64(samples))
	}
}

// SetModelVersion publishes the active model version.
func SetModelVersion(version int64) {
	RankerModelVersion.Set(float64(version))
}

// RecordSnapshot records a model store operation.
func RecordSnapshot(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	RankerSnapshotOps.WithLabelValues(operation, result).Inc()
}

// RecordCacheLookup counts one cache lookup.
func RecordCacheLookup(cacheType string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(cacheType, result).Inc()
}

// RecordBreakerResult classifies the outcome of a call through a breaker.
func RecordBreakerResult(name string, consecutiveFailures uint32, err error) {
	switch {
	case err == nil:
		CircuitBreakerRequests.WithLabelValues(name, "success").Inc()
		CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		CircuitBreakerRequests.WithLabelValues(name, "rejected").Inc()
	default:
		CircuitBreakerRequests.WithLabelValues(name, "failure").Inc()
		CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(float64(consecutiveFailures))
	}
}

// RecordBreakerTransition records a state change.
func RecordBreakerTransition(name string, from, to gobreaker.State) {
	CircuitBreakerState.WithLabelValues(name).Set(BreakerStateValue(to))
	CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
	if to == gobreaker.StateClosed {
		CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
	}
}

// BreakerStateValue maps a breaker state to the circuit_breaker_state gauge.
func BreakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
