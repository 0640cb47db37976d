// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package api

import (
	"context"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/lunasocial/internal/database"
	"github.com/tomtom215/lunasocial/internal/logging"
)

const healthCheckTimeout = 3 * time.Second

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status            string                 `json:"status"` // healthy, degraded
	Version           string                 `json:"version"`
	DatabaseConnected bool                   `json:"database_connected"`
	DataSourceBreaker string                 `json:"data_source_breaker,omitempty"`
	ModelLoaded       bool                   `json:"model_loaded"`
	ModelVersion      int64                  `json:"model_version"`
	Records           *database.RecordCounts `json:"records,omitempty"`
	EngineRequests    int64                  `json:"engine_requests"`
	EngineErrors      int64                  `json:"engine_errors"`
	UptimeSeconds     float64                `json:"uptime_seconds"`
}

// Health handles GET /api/v1/health. It answers 503 when the database does
// not respond or the data source breaker is open, so a load balancer stops
// routing to this instance. A missing model is not unhealthy: heuristic
// scoring still serves.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := h.engine.Status()
	health := HealthStatus{
		Status:        "healthy",
		Version:       h.version,
		ModelLoaded:   status.ModelLoaded,
		ModelVersion:  status.ModelVersion,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	health.EngineRequests, health.EngineErrors = h.engine.Counters()

	if err := h.store.Ping(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("health check: database ping failed")
		health.Status = "degraded"
	} else {
		health.DatabaseConnected = true
		counts, err := h.store.GetRecordCounts(ctx)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("health check: record counts failed")
		}
		health.Records = counts
	}

	if h.breaker != nil {
		state := h.breaker.State()
		health.DataSourceBreaker = state.String()
		if state == gobreaker.StateOpen {
			health.Status = "degraded"
		}
	}

	if health.Status != "healthy" {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "service degraded", health)
		return
	}
	rw.Success(health)
}

// HealthLive handles GET /api/v1/health/live. It only proves the process
// serves HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}
