// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/lunasocial/internal/recommend"
	"github.com/tomtom215/lunasocial/internal/validation"
)

// listRequest is the common shape of the recommendation list endpoints.
// Limit 0 selects the engine default; the engine enforces the maximum.
type listRequest struct {
	UserID    string `json:"user_id" validate:"required,entity_id"`
	Limit     int    `json:"limit" validate:"gte=0"`
	Reasoning bool   `json:"reasoning"`
}

type compatibilityRequest struct {
	UserA string `json:"user_a" validate:"required,entity_id"`
	UserB string `json:"user_b" validate:"required,entity_id,nefield=UserA"`
}

// interactionRequest is the body of POST /interactions.
type interactionRequest struct {
	UserID          string     `json:"user_id" validate:"required,entity_id"`
	VenueID         string     `json:"venue_id" validate:"required,entity_id"`
	Kind            string     `json:"kind" validate:"required,interaction_kind"`
	DurationSeconds int        `json:"duration_seconds" validate:"gte=0,lte=86400"`
	Timestamp       *time.Time `json:"timestamp,omitempty"`
}

func (req *interactionRequest) toInteraction(now time.Time) (*recommend.Interaction, error) {
	kind, err := recommend.ParseInteractionKind(req.Kind)
	if err != nil {
		return nil, err
	}
	ts := now
	if req.Timestamp != nil && !req.Timestamp.IsZero() {
		ts = req.Timestamp.UTC()
	}
	return &recommend.Interaction{
		UserID:          req.UserID,
		VenueID:         req.VenueID,
		Kind:            kind,
		DurationSeconds: req.DurationSeconds,
		Timestamp:       ts,
	}, nil
}

// parseListRequest reads {userID}, ?limit and ?reasoning.
func parseListRequest(r *http.Request) (*listRequest, error) {
	req := &listRequest{UserID: chi.URLParam(r, "userID")}

	q := r.URL.Query()
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("limit %q is not an integer: %w", raw, recommend.ErrInvalidInput)
		}
		req.Limit = limit
	}
	if raw := q.Get("reasoning"); raw != "" {
		reasoning, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("reasoning %q is not a boolean: %w", raw, recommend.ErrInvalidInput)
		}
		req.Reasoning = reasoning
	}

	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	return req, nil
}
