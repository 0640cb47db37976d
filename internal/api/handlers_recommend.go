// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/lunasocial/internal/logging"
	"github.com/tomtom215/lunasocial/internal/metrics"
	"github.com/tomtom215/lunasocial/internal/recommend"
	"github.com/tomtom215/lunasocial/internal/validation"
)

// PeopleResponse is the body of GET /recommend/people/{userID}.
type PeopleResponse struct {
	UserID  string                `json:"user_id"`
	Matches []recommend.UserMatch `json:"matches"`
	Count   int                   `json:"count"`
}

// GroupsResponse is the body of GET /recommend/groups/{userID}.
type GroupsResponse struct {
	UserID  string                 `json:"user_id"`
	Matches []recommend.GroupMatch `json:"matches"`
	Count   int                    `json:"count"`
}

// RecommendVenues handles GET /api/v1/recommend/venues/{userID}.
// Query: limit (0 = default), reasoning (bool).
func (h *Handler) RecommendVenues(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	req, err := parseListRequest(r)
	if err != nil {
		writeError(rw, r, err)
		return
	}

	ctx, cancel := h.requestContext(r, req.UserID)
	defer cancel()

	start := time.Now()
	result, err := h.engine.RecommendVenues(ctx, req.UserID, req.Limit, req.Reasoning)
	metrics.RecordRecommendation("venues", time.Since(start), venueCount(result), err)
	if err != nil {
		writeError(rw, r, err)
		return
	}
	rw.Success(result)
}

// RecommendPeople handles GET /api/v1/recommend/people/{userID}.
func (h *Handler) RecommendPeople(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	req, err := parseListRequest(r)
	if err != nil {
		writeError(rw, r, err)
		return
	}

	ctx, cancel := h.requestContext(r, req.UserID)
	defer cancel()

	start := time.Now()
	matches, err := h.engine.RecommendUsers(ctx, req.UserID, req.Limit)
	metrics.RecordRecommendation("users", time.Since(start), len(matches), err)
	if err != nil {
		writeError(rw, r, err)
		return
	}
	if matches == nil {
		matches = []recommend.UserMatch{}
	}
	rw.Success(PeopleResponse{UserID: req.UserID, Matches: matches, Count: len(matches)})
}

// RecommendGroups handles GET /api/v1/recommend/groups/{userID}.
func (h *Handler) RecommendGroups(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	req, err := parseListRequest(r)
	if err != nil {
		writeError(rw, r, err)
		return
	}

	ctx, cancel := h.requestContext(r, req.UserID)
	defer cancel()

	start := time.Now()
	matches, err := h.engine.RecommendGroups(ctx, req.UserID, req.Limit)
	metrics.RecordRecommendation("groups", time.Since(start), len(matches), err)
	if err != nil {
		writeError(rw, r, err)
		return
	}
	if matches == nil {
		matches = []recommend.GroupMatch{}
	}
	rw.Success(GroupsResponse{UserID: req.UserID, Matches: matches, Count: len(matches)})
}

// Compatibility handles GET /api/v1/compatibility/{userA}/{userB}.
func (h *Handler) Compatibility(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	req := compatibilityRequest{
		UserA: chi.URLParam(r, "userA"),
		UserB: chi.URLParam(r, "userB"),
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeError(rw, r, verr)
		return
	}

	ctx, cancel := h.requestContext(r, req.UserA)
	defer cancel()

	start := time.Now()
	result, err := h.engine.Compatibility(ctx, req.UserA, req.UserB)
	metrics.RecordRecommendation("compatibility", time.Since(start), 1, err)
	if err != nil {
		writeError(rw, r, err)
		return
	}
	rw.Success(result)
}

// UserProfile handles GET /api/v1/users/{userID}/profile.
func (h *Handler) UserProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	req := listRequest{UserID: chi.URLParam(r, "userID")}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeError(rw, r, verr)
		return
	}

	ctx, cancel := h.requestContext(r, req.UserID)
	defer cancel()

	profile, err := h.engine.BuildUserProfile(ctx, req.UserID)
	if err != nil {
		writeError(rw, r, err)
		return
	}
	rw.Success(profile)
}

// requestContext bounds an engine call and tags the context with the user
// the request is about, so every log line below carries it.
func (h *Handler) requestContext(r *http.Request, userID string) (context.Context, context.CancelFunc) {
	ctx := logging.ContextWithUserID(r.Context(), userID)
	return context.WithTimeout(ctx, h.requestTimeout)
}

func venueCount(result *recommend.VenueRecommendations) int {
	if result == nil {
		return 0
	}
	return len(result.Venues)
}
