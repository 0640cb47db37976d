// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/lunasocial/internal/middleware"
)

// NewRouter builds the HTTP routes:
//
//	GET  /metrics
//	GET  /api/v1/health
//	GET  /api/v1/health/live
//	GET  /api/v1/recommend/venues/{userID}
//	GET  /api/v1/recommend/people/{userID}
//	GET  /api/v1/recommend/groups/{userID}
//	GET  /api/v1/compatibility/{userA}/{userB}
//	GET  /api/v1/users/{userID}/profile
//	POST /api/v1/interactions
//	GET  /api/v1/ranker/status
//	POST /api/v1/ranker/train
func NewRouter(h *Handler, mw *ChiMiddleware) http.Handler {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.SecurityHeaders)
	r.Use(mw.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("no route for " + r.Method + " " + r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimitHealth())
			r.Get("/health", h.Health)
			r.Get("/health/live", h.HealthLive)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit())
			r.Use(middleware.Compression)
			r.Get("/recommend/venues/{userID}", h.RecommendVenues)
			r.Get("/recommend/people/{userID}", h.RecommendPeople)
			r.Get("/recommend/groups/{userID}", h.RecommendGroups)
			r.Get("/compatibility/{userA}/{userB}", h.Compatibility)
			r.Get("/users/{userID}/profile", h.UserProfile)
			r.Get("/ranker/status", h.RankerStatus)
		})

		r.With(mw.RateLimitWrite()).Post("/interactions", h.RecordInteraction)
		r.With(mw.RateLimitTrain()).Post("/ranker/train", h.TrainRanker)
	})

	return r
}
