// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/lunasocial/internal/recommend"
)

var _ recommend.DataSource = (*DB)(nil)

const (
	userColumns        = `id, username, latitude, longitude, interests, friends, blocked_users, updated_at`
	venueColumns       = `id, name, description, category, latitude, longitude, rating, trending_score, capacity, updated_at`
	interactionColumns = `id, user_id, venue_id, kind, duration_seconds, occurred_at`
	bookingColumns     = `id, user_id, venue_id, booking_date, party_size, status`
	groupColumns       = `id, name, description, members, creator_id, venue_preferences, updated_at`
)

// GetUser returns a single user.
func (db *DB) GetUser(ctx context.Context, userID string) (user *recommend.User, err error) {
	defer func(start time.Time) { observe("get_user", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var row userRow
	if err := db.conn.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = ?`, userID); err != nil {
		return nil, notFound(err, "user", userID)
	}
	return row.toUser()
}

// GetVenue returns a single venue.
func (db *DB) GetVenue(ctx context.Context, venueID string) (venue *recommend.Venue, err error) {
	defer func(start time.Time) { observe("get_venue", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var row venueRow
	if err := db.conn.GetContext(ctx, &row, `SELECT `+venueColumns+` FROM venues WHERE id = ?`, venueID); err != nil {
		return nil, notFound(err, "venue", venueID)
	}
	v, err := row.toVenue()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetAllVenues returns the catalog ordered by id.
func (db *DB) GetAllVenues(ctx context.Context) (venues []recommend.Venue, err error) {
	defer func(start time.Time) { observe("get_all_venues", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var rows []venueRow
	if err := db.conn.SelectContext(ctx, &rows, `SELECT `+venueColumns+` FROM venues ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}

	venues = make([]recommend.Venue, 0, len(rows))
	for i := range rows {
		v, err := rows[i].toVenue()
		if err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, nil
}

// GetUserInteractions returns the user's interactions, oldest first.
func (db *DB) GetUserInteractions(ctx context.Context, userID string) (interactions []recommend.Interaction, err error) {
	defer func(start time.Time) { observe("get_user_interactions", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var rows []interactionRow
	err = db.conn.SelectContext(ctx, &rows,
		`SELECT `+interactionColumns+` FROM interactions WHERE user_id = ? ORDER BY occurred_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions for %s: %w", userID, err)
	}

	interactions = make([]recommend.Interaction, 0, len(rows))
	for i := range rows {
		in, err := rows[i].toInteraction()
		if err != nil {
			return nil, err
		}
		interactions = append(interactions, in)
	}
	return interactions, nil
}

// GetAllUserIDs returns every user id ordered by id.
func (db *DB) GetAllUserIDs(ctx context.Context) (ids []string, err error) {
	defer func(start time.Time) { observe("get_all_user_ids", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if err := db.conn.SelectContext(ctx, &ids, `SELECT id FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	return ids, nil
}

// GetUserBookings returns the user's bookings ordered by date.
func (db *DB) GetUserBookings(ctx context.Context, userID string) (bookings []recommend.Booking, err error) {
	defer func(start time.Time) { observe("get_user_bookings", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var rows []bookingRow
	err = db.conn.SelectContext(ctx, &rows,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY booking_date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for %s: %w", userID, err)
	}

	bookings = make([]recommend.Booking, 0, len(rows))
	for i := range rows {
		bookings = append(bookings, rows[i].toBooking())
	}
	return bookings, nil
}

// GetUserGroups returns every group ordered by id. All groups are visible
// to every user; the engine drops the ones the user already belongs to.
func (db *DB) GetUserGroups(ctx context.Context, _ string) (groups []recommend.Group, err error) {
	defer func(start time.Time) { observe("get_user_groups", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var rows []groupRow
	if err := db.conn.SelectContext(ctx, &rows, `SELECT `+groupColumns+` FROM social_groups ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	groups = make([]recommend.Group, 0, len(rows))
	for i := range rows {
		g, err := rows[i].toGroup()
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}
