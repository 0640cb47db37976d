// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lunasocial/internal/logging"
	"github.com/tomtom215/lunasocial/internal/recommend"
	"github.com/tomtom215/lunasocial/internal/validation"
)

// InteractionCreated is the body of a successful POST /interactions.
type InteractionCreated struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// RecordInteraction handles POST /api/v1/interactions. The interaction is
// appended to the log the profile builder and the ranker read; it affects
// the next recommendation call immediately and the ranker on its next run.
func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req interactionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(rw, r, fmt.Errorf("malformed request body: %v: %w", err, recommend.ErrInvalidInput))
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeError(rw, r, verr)
		return
	}

	in, err := req.toInteraction(time.Now().UTC())
	if err != nil {
		writeError(rw, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(logging.ContextWithUserID(r.Context(), in.UserID), h.requestTimeout)
	defer cancel()

	id, err := h.store.InsertInteraction(ctx, in)
	if err != nil {
		writeError(rw, r, err)
		return
	}

	logging.Ctx(ctx).Debug().
		Str("venue_id", in.VenueID).
		Str("kind", in.Kind.String()).
		Msg("interaction recorded")
	rw.Created(InteractionCreated{ID: id, Kind: in.Kind.String(), Timestamp: in.Timestamp})
}
