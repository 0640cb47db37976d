// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

// Package validation validates API request structs with go-playground/validator v10.
//
// A single validator instance is built on first use. Error field names are
// taken from json tags so messages match the request body the client sent.
//
// # Custom Tags
//
//   - entity_id: user, venue and group identifiers (1-128 of [A-Za-z0-9_.:-])
//   - category: a venue category slug or display name ("art_gallery", "Art Gallery")
//   - interaction_kind: view, like, comment, save, click or visit
//
// The built-in latitude and longitude tags cover coordinates.
//
// # Errors
//
// ValidateStruct returns *RequestValidationError, which unwraps to
// recommend.ErrInvalidInput and converts to the VALIDATION_ERROR body via
// ToAPIError:
//
//	type InteractionRequest struct {
//	    UserID  string `json:"user_id" validate:"required,entity_id"`
//	    VenueID string `json:"venue_id" validate:"required,entity_id"`
//	    Kind    string `json:"kind" validate:"required,interaction_kind"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
package validation
