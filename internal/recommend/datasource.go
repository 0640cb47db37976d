// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package recommend

import "context"

// DataSource is the read-only data access the engine depends on. It is
// implemented by the database package. Lookups of absent entities must
// return an error wrapping ErrNotFound.
type DataSource interface {
	// GetUser returns a user record.
	GetUser(ctx context.Context, userID string) (*User, error)

	// GetVenue returns a venue record.
	GetVenue(ctx context.Context, venueID string) (*Venue, error)

	// GetAllVenues returns the full catalog in a stable order.
	GetAllVenues(ctx context.Context) ([]Venue, error)

	// GetUserInteractions returns a user's complete interaction history.
	GetUserInteractions(ctx context.Context, userID string) ([]Interaction, error)

	// GetAllUserIDs returns every user id in a stable order.
	GetAllUserIDs(ctx context.Context) ([]string, error)

	// GetUserBookings returns the user's bookings.
	GetUserBookings(ctx context.Context, userID string) ([]Booking, error)

	// GetUserGroups returns the groups visible to the user as suggestion candidates.
	GetUserGroups(ctx context.Context, userID string) ([]Group, error)
}
