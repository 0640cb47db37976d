// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tomtom215/lunasocial/internal/metrics"
	"github.com/tomtom215/lunasocial/internal/recommend"
)

// closeQuietly closes a resource and explicitly ignores any error.
// Use this for cleanup in error paths where Close errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// notFound converts sql.ErrNoRows into recommend.ErrNotFound so callers
// across the engine boundary can use errors.Is.
func notFound(err error, entity, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %q: %w", entity, id, recommend.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s %s: %w", entity, id, err)
}

// observe records query metrics. Not-found lookups are timed but not
// counted as errors.
func observe(operation string, start time.Time, err error) {
	metrics.RecordDBQuery(operation, time.Since(start), err, !errors.Is(err, recommend.ErrNotFound))
}
