// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tomtom215/lunasocial/internal/recommend"
)

// RecordCounts holds row counts for the main tables.
type RecordCounts struct {
	Users        int64 `json:"users" db:"users"`
	Venues       int64 `json:"venues" db:"venues"`
	Interactions int64 `json:"interactions" db:"interactions"`
	Bookings     int64 `json:"bookings" db:"bookings"`
	Groups       int64 `json:"groups" db:"groups"`
}

// Empty reports whether no users and no venues exist.
func (c *RecordCounts) Empty() bool {
	return c.Users == 0 && c.Venues == 0
}

const (
	upsertUserSQL = `INSERT INTO users (id, username, latitude, longitude, interests, friends, blocked_users, updated_at)
		VALUES (:id, :username, :latitude, :longitude, :interests, :friends, :blocked_users, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			username = excluded.username,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			interests = excluded.interests,
			friends = excluded.friends,
			blocked_users = excluded.blocked_users,
			updated_at = excluded.updated_at`

	upsertVenueSQL = `INSERT INTO venues (id, name, description, category, latitude, longitude, rating, trending_score, capacity, updated_at)
		VALUES (:id, :name, :description, :category, :latitude, :longitude, :rating, :trending_score, :capacity, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			category = excluded.category,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			rating = excluded.rating,
			trending_score = excluded.trending_score,
			capacity = excluded.capacity,
			updated_at = excluded.updated_at`

	insertInteractionSQL = `INSERT INTO interactions (id, user_id, venue_id, kind, duration_seconds, occurred_at)
		VALUES (:id, :user_id, :venue_id, :kind, :duration_seconds, :occurred_at)`

	// user_id and venue_id are indexed and cannot be rewritten by DO UPDATE.
	upsertBookingSQL = `INSERT INTO bookings (id, user_id, venue_id, booking_date, party_size, status)
		VALUES (:id, :user_id, :venue_id, :booking_date, :party_size, :status)
		ON CONFLICT (id) DO UPDATE SET
			booking_date = excluded.booking_date,
			party_size = excluded.party_size,
			status = excluded.status`

	upsertGroupSQL = `INSERT INTO social_groups (id, name, description, members, creator_id, venue_preferences, updated_at)
		VALUES (:id, :name, :description, :members, :creator_id, :venue_preferences, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			members = excluded.members,
			creator_id = excluded.creator_id,
			venue_preferences = excluded.venue_preferences,
			updated_at = excluded.updated_at`
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), recommend.ErrInvalidInput)
}

// UpsertUser inserts or replaces a user.
func (db *DB) UpsertUser(ctx context.Context, u *recommend.User) (err error) {
	defer func(start time.Time) { observe("upsert_user", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return upsertUser(ctx, db.conn, u, time.Now().UTC())
}

func upsertUser(ctx context.Context, ext sqlx.ExtContext, u *recommend.User, now time.Time) error {
	if strings.TrimSpace(u.ID) == "" || strings.TrimSpace(u.Username) == "" {
		return invalid("user id and username are required")
	}
	if err := u.Location.Validate(); err != nil {
		return fmt.Errorf("user %s: %w", u.ID, err)
	}
	row, err := newUserRow(u, now)
	if err != nil {
		return fmt.Errorf("encode user %s: %w", u.ID, err)
	}
	if _, err := sqlx.NamedExecContext(ctx, ext, upsertUserSQL, row); err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", u.ID, err)
	}
	return nil
}

// UpsertVenue inserts or replaces a venue.
func (db *DB) UpsertVenue(ctx context.Context, v *recommend.Venue) (err error) {
	defer func(start time.Time) { observe("upsert_venue", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return upsertVenue(ctx, db.conn, v, time.Now().UTC())
}

func upsertVenue(ctx context.Context, ext sqlx.ExtContext, v *recommend.Venue, now time.Time) error {
	switch {
	case strings.TrimSpace(v.ID) == "" || strings.TrimSpace(v.Name) == "":
		return invalid("venue id and name are required")
	case !v.Category.Valid():
		return invalid("venue %s: category %d", v.ID, int(v.Category))
	case v.Rating < 0 || v.Rating > 5:
		return invalid("venue %s: rating %.2f outside [0,5]", v.ID, v.Rating)
	case v.TrendingScore < 0 || v.TrendingScore > 1:
		return invalid("venue %s: trending score %.2f outside [0,1]", v.ID, v.TrendingScore)
	case v.Capacity <= 0:
		return invalid("venue %s: capacity %d must be positive", v.ID, v.Capacity)
	}
	if err := v.Location.Validate(); err != nil {
		return fmt.Errorf("venue %s: %w", v.ID, err)
	}
	if _, err := sqlx.NamedExecContext(ctx, ext, upsertVenueSQL, newVenueRow(v, now)); err != nil {
		return fmt.Errorf("failed to upsert venue %s: %w", v.ID, err)
	}
	return nil
}

// InsertInteraction appends an interaction and returns its id. The user and
// venue must exist. A zero timestamp is replaced by the current time.
func (db *DB) InsertInteraction(ctx context.Context, in *recommend.Interaction) (id string, err error) {
	defer func(start time.Time) { observe("insert_interaction", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	for _, ref := range []struct{ table, entity, id string }{
		{"users", "user", in.UserID},
		{"venues", "venue", in.VenueID},
	} {
		var n int64
		if err := db.conn.GetContext(ctx, &n, `SELECT COUNT(*) FROM `+ref.table+` WHERE id = ?`, ref.id); err != nil {
			return "", fmt.Errorf("failed to check %s %s: %w", ref.entity, ref.id, err)
		}
		if n == 0 {
			return "", fmt.Errorf("%s %q: %w", ref.entity, ref.id, recommend.ErrNotFound)
		}
	}

	return insertInteraction(ctx, db.conn, in, time.Now().UTC())
}

func insertInteraction(ctx context.Context, ext sqlx.ExtContext, in *recommend.Interaction, now time.Time) (string, error) {
	if in.UserID == "" || in.VenueID == "" {
		return "", invalid("interaction user_id and venue_id are required")
	}
	if _, err := in.Kind.MarshalText(); err != nil {
		return "", err
	}
	if in.DurationSeconds < 0 {
		return "", invalid("negative interaction duration")
	}

	occurred := in.Timestamp
	if occurred.IsZero() {
		occurred = now
	}
	row := &interactionRow{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		VenueID:         in.VenueID,
		Kind:            in.Kind.String(),
		DurationSeconds: in.DurationSeconds,
		OccurredAt:      occurred.UTC(),
	}
	if _, err := sqlx.NamedExecContext(ctx, ext, insertInteractionSQL, row); err != nil {
		return "", fmt.Errorf("failed to insert interaction: %w", err)
	}
	return row.ID, nil
}

// UpsertBooking inserts a booking or updates its date, party size and status.
// An empty id is replaced by a generated one.
func (db *DB) UpsertBooking(ctx context.Context, b *recommend.Booking) (err error) {
	defer func(start time.Time) { observe("upsert_booking", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return upsertBooking(ctx, db.conn, b)
}

func upsertBooking(ctx context.Context, ext sqlx.ExtContext, b *recommend.Booking) error {
	if b.UserID == "" || b.VenueID == "" {
		return invalid("booking user_id and venue_id are required")
	}
	if b.PartySize < 1 {
		return invalid("booking party size %d", b.PartySize)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = "confirmed"
	}
	row := &bookingRow{
		ID:          b.ID,
		UserID:      b.UserID,
		VenueID:     b.VenueID,
		BookingDate: b.Date.UTC(),
		PartySize:   b.PartySize,
		Status:      b.Status,
	}
	if _, err := sqlx.NamedExecContext(ctx, ext, upsertBookingSQL, row); err != nil {
		return fmt.Errorf("failed to upsert booking %s: %w", b.ID, err)
	}
	return nil
}

// UpsertGroup inserts or replaces a group.
func (db *DB) UpsertGroup(ctx context.Context, g *recommend.Group) (err error) {
	defer func(start time.Time) { observe("upsert_group", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return upsertGroup(ctx, db.conn, g, time.Now().UTC())
}

func upsertGroup(ctx context.Context, ext sqlx.ExtContext, g *recommend.Group, now time.Time) error {
	if strings.TrimSpace(g.ID) == "" || strings.TrimSpace(g.Name) == "" {
		return invalid("group id and name are required")
	}
	for _, c := range g.VenuePreferences {
		if !c.Valid() {
			return invalid("group %s: category %d", g.ID, int(c))
		}
	}
	row, err := newGroupRow(g, now)
	if err != nil {
		return fmt.Errorf("encode group %s: %w", g.ID, err)
	}
	if _, err := sqlx.NamedExecContext(ctx, ext, upsertGroupSQL, row); err != nil {
		return fmt.Errorf("failed to upsert group %s: %w", g.ID, err)
	}
	return nil
}

// GetRecordCounts returns row counts for the main tables.
func (db *DB) GetRecordCounts(ctx context.Context) (counts *RecordCounts, err error) {
	defer func(start time.Time) { observe("record_counts", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	counts = &RecordCounts{}
	err = db.conn.GetContext(ctx, counts, `SELECT
		(SELECT COUNT(*) FROM users) AS users,
		(SELECT COUNT(*) FROM venues) AS venues,
		(SELECT COUNT(*) FROM interactions) AS interactions,
		(SELECT COUNT(*) FROM bookings) AS bookings,
		(SELECT COUNT(*) FROM social_groups) AS "groups"`)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	return counts, nil
}
