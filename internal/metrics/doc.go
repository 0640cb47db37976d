// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

/*
Package metrics defines the Prometheus metrics exported at /metrics.

All collectors are registered with the default registry through promauto,
so importing the package is enough to expose them.

# Available Metrics

API:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

Recommendations:
  - recommend_request_duration_seconds{kind}
  - recommend_results{kind}
  - recommend_errors_total{kind}

Ranker:
  - ranker_training_runs_total{outcome}: published, skipped, failed, busy
  - ranker_training_duration_seconds
  - ranker_training_samples
  - ranker_model_version (0 while only the heuristic is available)
  - ranker_snapshot_operations_total{operation,result}

Data source:
  - duckdb_query_duration_seconds{operation}
  - duckdb_query_errors_total{operation}
  - circuit_breaker_state{name}: 0 closed, 1 half-open, 2 open
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_consecutive_failures{name}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}
  - cache_lookups_total{cache_type,result}: users, venues, catalog

# Example Alert

	- alert: RankerTrainingFailing
	  expr: increase(ranker_training_runs_total{outcome="failed"}[1d]) > 2
	  labels:
	    severity: warning
*/
package metrics
