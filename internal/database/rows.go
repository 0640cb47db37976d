// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package database

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lunasocial/internal/recommend"
)

// Row types mirror the table layouts. List columns hold JSON arrays.

type userRow struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	Latitude     float64   `db:"latitude"`
	Longitude    float64   `db:"longitude"`
	Interests    string    `db:"interests"`
	Friends      string    `db:"friends"`
	BlockedUsers string    `db:"blocked_users"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type venueRow struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Description   string    `db:"description"`
	Category      string    `db:"category"`
	Latitude      float64   `db:"latitude"`
	Longitude     float64   `db:"longitude"`
	Rating        float64   `db:"rating"`
	TrendingScore float64   `db:"trending_score"`
	Capacity      int       `db:"capacity"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type interactionRow struct {
	ID              string    `db:"id"`
	UserID          string    `db:"user_id"`
	VenueID         string    `db:"venue_id"`
	Kind            string    `db:"kind"`
	DurationSeconds int       `db:"duration_seconds"`
	OccurredAt      time.Time `db:"occurred_at"`
}

type bookingRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	VenueID     string    `db:"venue_id"`
	BookingDate time.Time `db:"booking_date"`
	PartySize   int       `db:"party_size"`
	Status      string    `db:"status"`
}

type groupRow struct {
	ID               string    `db:"id"`
	Name             string    `db:"name"`
	Description      string    `db:"description"`
	Members          string    `db:"members"`
	CreatorID        string    `db:"creator_id"`
	VenuePreferences string    `db:"venue_preferences"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func decodeList(column, raw string, dst any) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s: %w", column, err)
	}
	return nil
}

func encodeList[T any](list []T) (string, error) {
	if list == nil {
		return "[]", nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *userRow) toUser() (*recommend.User, error) {
	u := &recommend.User{
		ID:       r.ID,
		Username: r.Username,
		Location: recommend.Coordinate{Latitude: r.Latitude, Longitude: r.Longitude},
	}
	if err := decodeList("interests", r.Interests, &u.Interests); err != nil {
		return nil, fmt.Errorf("user %s: %w", r.ID, err)
	}
	if err := decodeList("friends", r.Friends, &u.Friends); err != nil {
		return nil, fmt.Errorf("user %s: %w", r.ID, err)
	}
	if err := decodeList("blocked_users", r.BlockedUsers, &u.BlockedUsers); err != nil {
		return nil, fmt.Errorf("user %s: %w", r.ID, err)
	}
	return u, nil
}

func newUserRow(u *recommend.User, now time.Time) (*userRow, error) {
	interests, err := encodeList(u.Interests)
	if err != nil {
		return nil, err
	}
	friends, err := encodeList(u.Friends)
	if err != nil {
		return nil, err
	}
	blocked, err := encodeList(u.BlockedUsers)
	if err != nil {
		return nil, err
	}
	return &userRow{
		ID:           u.ID,
		Username:     u.Username,
		Latitude:     u.Location.Latitude,
		Longitude:    u.Location.Longitude,
		Interests:    interests,
		Friends:      friends,
		BlockedUsers: blocked,
		UpdatedAt:    now,
	}, nil
}

func (r *venueRow) toVenue() (recommend.Venue, error) {
	category, err := recommend.ParseCategory(r.Category)
	if err != nil {
		return recommend.Venue{}, fmt.Errorf("venue %s: %w", r.ID, err)
	}
	return recommend.Venue{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		Category:      category,
		Location:      recommend.Coordinate{Latitude: r.Latitude, Longitude: r.Longitude},
		Rating:        r.Rating,
		TrendingScore: r.TrendingScore,
		Capacity:      r.Capacity,
	}, nil
}

func newVenueRow(v *recommend.Venue, now time.Time) *venueRow {
	return &venueRow{
		ID:            v.ID,
		Name:          v.Name,
		Description:   v.Description,
		Category:      v.Category.Slug(),
		Latitude:      v.Location.Latitude,
		Longitude:     v.Location.Longitude,
		Rating:        v.Rating,
		TrendingScore: v.TrendingScore,
		Capacity:      v.Capacity,
		UpdatedAt:     now,
	}
}

func (r *interactionRow) toInteraction() (recommend.Interaction, error) {
	kind, err := recommend.ParseInteractionKind(r.Kind)
	if err != nil {
		return recommend.Interaction{}, fmt.Errorf("interaction %s: %w", r.ID, err)
	}
	return recommend.Interaction{
		UserID:          r.UserID,
		VenueID:         r.VenueID,
		Kind:            kind,
		DurationSeconds: r.DurationSeconds,
		Timestamp:       r.OccurredAt,
	}, nil
}

func (r *bookingRow) toBooking() recommend.Booking {
	return recommend.Booking{
		ID:        r.ID,
		UserID:    r.UserID,
		VenueID:   r.VenueID,
		Date:      r.BookingDate,
		PartySize: r.PartySize,
		Status:    r.Status,
	}
}

func (r *groupRow) toGroup() (recommend.Group, error) {
	g := recommend.Group{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatorID:   r.CreatorID,
	}
	if err := decodeList("members", r.Members, &g.Members); err != nil {
		return recommend.Group{}, fmt.Errorf("group %s: %w", r.ID, err)
	}
	if err := decodeList("venue_preferences", r.VenuePreferences, &g.VenuePreferences); err != nil {
		return recommend.Group{}, fmt.Errorf("group %s: %w", r.ID, err)
	}
	return g, nil
}

func newGroupRow(g *recommend.Group, now time.Time) (*groupRow, error) {
	members, err := encodeList(g.Members)
	if err != nil {
		return nil, err
	}
	prefs, err := encodeList(g.VenuePreferences)
	if err != nil {
		return nil, err
	}
	return &groupRow{
		ID:               g.ID,
		Name:             g.Name,
		Description:      g.Description,
		Members:          members,
		CreatorID:        g.CreatorID,
		VenuePreferences: prefs,
		UpdatedAt:        now,
	}, nil
}
