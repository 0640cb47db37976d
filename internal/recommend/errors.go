// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package recommend

import "errors"

var (
	// ErrNotFound is returned when a user, venue or group id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientData is returned when ranker training is skipped because
	// fewer labeled samples exist than the configured minimum. The previously
	// active model stays in effect.
	ErrInsufficientData = errors.New("insufficient training data")

	// ErrInvalidInput is returned for malformed coordinates, limits or enum values.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTrainingInProgress is returned when a training run is already active.
	ErrTrainingInProgress = errors.New("training already in progress")
)
