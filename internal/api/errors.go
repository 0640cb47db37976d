// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/lunasocial/internal/logging"
	"github.com/tomtom215/lunasocial/internal/recommend"
	"github.com/tomtom215/lunasocial/internal/validation"
)

// writeError maps engine and store errors onto HTTP statuses:
//
//	ErrNotFound            404
//	ErrInvalidInput        400 (field details for validator failures)
//	ErrTrainingInProgress  409
//	context deadline       503
//	anything else          500, message withheld
//
// Not-found and invalid-input messages describe the caller's own request and
// are returned as is.
func writeError(rw *ResponseWriter, r *http.Request, err error) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		apiErr := verr.ToAPIError()
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed, apiErr.Message, apiErr.Details)

	case errors.Is(err, recommend.ErrNotFound):
		rw.NotFound(err.Error())

	case errors.Is(err, recommend.ErrInvalidInput):
		rw.BadRequest(err.Error())

	case errors.Is(err, recommend.ErrTrainingInProgress):
		rw.Conflict("a training run is already in progress")

	case errors.Is(err, context.DeadlineExceeded):
		logging.Ctx(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg("request timed out")
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "request timed out")

	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		rw.InternalError("internal error")
	}
}
