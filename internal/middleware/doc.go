// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

/*
Package middleware provides the net/http middleware shared by the API
router. Every function has the chi signature func(http.Handler) http.Handler.

  - RequestID: accepts or generates X-Request-ID and stores it for logging
  - AccessLog: one zerolog line per request
  - PrometheusMetrics: api_requests_total, api_request_duration_seconds and
    api_active_requests, labelled by chi route pattern
  - Compression: pooled gzip writers
  - SecurityHeaders: nosniff, frame denial, no-store, HSTS behind TLS

# Order

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)
	r.Use(middleware.SecurityHeaders)

RequestID runs first so every later log line carries the id. Metrics and
access logging sit outside compression so byte counts describe what the
handler produced.
*/
package middleware
