// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package database

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/tomtom215/lunasocial/internal/recommend"
)

// seedRandSeed keeps the demo dataset identical across runs.
const seedRandSeed = 20240615

// SeedSummary reports what SeedMockData wrote.
type SeedSummary struct {
	Users        int `json:"users"`
	Venues       int `json:"venues"`
	Groups       int `json:"groups"`
	Interactions int `json:"interactions"`
	Bookings     int `json:"bookings"`
}

// SeedMockData loads a small Manhattan demo dataset in a single transaction.
// It is a no-op when the database already has users or venues. The
// interaction history is large enough for a first ranker training run.
func (db *DB) SeedMockData(ctx context.Context) (*SeedSummary, error) {
	counts, err := db.GetRecordCounts(ctx)
	if err != nil {
		return nil, err
	}
	if !counts.Empty() {
		db.logger.Info().Int64("users", counts.Users).Int64("venues", counts.Venues).
			Msg("Database not empty, skipping mock data")
		return &SeedSummary{}, nil
	}

	db.logger.Info().Msg("Seeding database with demo data")

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC().Truncate(time.Second)
	summary := &SeedSummary{}

	users := demoUsers()
	for i := range users {
		if err := upsertUser(ctx, tx, &users[i], now); err != nil {
			return nil, err
		}
	}
	summary.Users = len(users)

	venues := demoVenues()
	for i := range venues {
		if err := upsertVenue(ctx, tx, &venues[i], now); err != nil {
			return nil, err
		}
	}
	summary.Venues = len(venues)

	groups := demoGroups()
	for i := range groups {
		if err := upsertGroup(ctx, tx, &groups[i], now); err != nil {
			return nil, err
		}
	}
	summary.Groups = len(groups)

	for _, in := range demoInteractions(users, venues, now) {
		if _, err := insertInteraction(ctx, tx, &in, now); err != nil {
			return nil, err
		}
		summary.Interactions++
	}

	for _, b := range demoBookings(now) {
		if err := upsertBooking(ctx, tx, &b); err != nil {
			return nil, err
		}
		summary.Bookings++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	committed = true

	db.logger.Info().
		Int("users", summary.Users).
		Int("venues", summary.Venues).
		Int("groups", summary.Groups).
		Int("interactions", summary.Interactions).
		Int("bookings", summary.Bookings).
		Msg("Demo data seeded")
	return summary, nil
}

func demoUsers() []recommend.User {
	type u struct {
		name      string
		lat, lon  float64
		interests []string
	}
	raw := []u{
		{"alice", 40.7580, -73.9855, []string{"coffee", "art", "nightlife"}},
		{"bob", 40.7614, -73.9776, []string{"food", "fitness", "nightlife"}},
		{"charlie", 40.7505, -73.9972, []string{"music", "art", "cocktails"}},
		{"diana", 40.7489, -73.9680, []string{"yoga", "wellness", "vegan"}},
		{"ethan", 40.7549, -73.9840, []string{"sports", "beer", "tech"}},
		{"fiona", 40.7505, -73.9934, []string{"fashion", "brunch", "shopping"}},
		{"george", 40.7614, -73.9776, []string{"hiking", "outdoors", "photography"}},
		{"hannah", 40.7549, -73.9840, []string{"wine", "fine dining", "art"}},
	}
	users := make([]recommend.User, len(raw))
	for i, r := range raw {
		users[i] = recommend.User{
			ID:        "user-" + r.name,
			Username:  r.name,
			Location:  recommend.Coordinate{Latitude: r.lat, Longitude: r.lon},
			Interests: r.interests,
		}
	}
	users[0].Friends = []string{"user-charlie", "user-hannah"}
	users[1].Friends = []string{"user-ethan"}
	users[4].BlockedUsers = []string{"user-fiona"}
	return users
}

func demoVenues() []recommend.Venue {
	type v struct {
		id, name, desc string
		category       recommend.Category
		lat, lon       float64
		rating         float64
		trending       float64
		capacity       int
	}
	raw := []v{
		{"blue-bottle", "Blue Bottle Coffee", "Specialty coffee roastery", recommend.CategoryCafe, 40.7505, -73.9972, 4.7, 0.80, 40},
		{"the-smith", "The Smith", "Modern American brasserie with brunch", recommend.CategoryRestaurant, 40.7614, -73.9776, 4.5, 0.60, 180},
		{"mercury-lounge", "Mercury Lounge", "Live music venue and cocktails", recommend.CategoryNightlife, 40.7214, -73.9900, 4.6, 0.70, 250},
		{"equinox", "Equinox Fitness", "Premium fitness center", recommend.CategoryGym, 40.7549, -73.9840, 4.4, 0.40, 300},
		{"balthazar", "Balthazar", "French bistro classic with a deep wine list", recommend.CategoryRestaurant, 40.7200, -73.9976, 4.8, 0.90, 200},
		{"yoga-people", "Yoga to the People", "Affordable yoga and wellness studio", recommend.CategoryGym, 40.7505, -73.9934, 4.3, 0.35, 60},
		{"back-room", "The Back Room", "Speakeasy with craft cocktails", recommend.CategoryNightlife, 40.7214, -73.9900, 4.4, 0.55, 120},
		{"moma-ps1", "MoMA PS1", "Contemporary art museum", recommend.CategoryArtGallery, 40.7505, -73.9972, 4.9, 0.95, 800},
		{"bacchanal", "Bacchanal Wine Bar", "Fine wine selection", recommend.CategoryNightlife, 40.7549, -73.9840, 4.6, 0.50, 90},
		{"central-park", "Central Park", "Walking trails, photography and outdoors", recommend.CategoryPark, 40.7829, -73.9654, 4.9, 0.85, 5000},
		{"noise-pop", "Noise Pop Records", "Vinyl record store and music cafe", recommend.CategoryCafe, 40.7400, -73.9800, 4.5, 0.30, 50},
		{"gramercy-tavern", "Gramercy Tavern", "Historic tavern with local beer", recommend.CategoryRestaurant, 40.7400, -73.9850, 4.5, 0.45, 150},
		{"soulcycle", "SoulCycle", "Indoor cycling fitness studio", recommend.CategoryGym, 40.7614, -73.9776, 4.6, 0.65, 45},
		{"angelika", "Angelika Film Center", "Independent cinema", recommend.CategoryMovieTheater, 40.7256, -73.9971, 4.4, 0.40, 400},
		{"hudson-yards", "The Shops at Hudson Yards", "Fashion and shopping mall", recommend.CategoryShopping, 40.7538, -74.0020, 4.3, 0.60, 3000},
		{"rockaway", "Rockaway Beach", "Surf beach outdoors", recommend.CategoryBeach, 40.5834, -73.8161, 4.2, 0.50, 10000},
		{"bear-mountain", "Bear Mountain Trail", "Day hiking with skyline photography", recommend.CategoryHiking, 41.3126, -73.9885, 4.7, 0.40, 1000},
		{"chelsea-gallery", "Chelsea Art Walk", "Gallery row for modern art", recommend.CategoryArtGallery, 40.7465, -74.0048, 4.6, 0.55, 300},
	}
	venues := make([]recommend.Venue, len(raw))
	for i, r := range raw {
		venues[i] = recommend.Venue{
			ID:            "venue-" + r.id,
			Name:          r.name,
			Description:   r.desc,
			Category:      r.category,
			Location:      recommend.Coordinate{Latitude: r.lat, Longitude: r.lon},
			Rating:        r.rating,
			TrendingScore: r.trending,
			Capacity:      r.capacity,
		}
	}
	return venues
}

func demoGroups() []recommend.Group {
	return []recommend.Group{
		{ID: "group-foodies", Name: "NYC Foodies", Description: "Share restaurant recommendations",
			Members: []string{"user-alice", "user-bob", "user-fiona", "user-hannah"}, CreatorID: "user-bob",
			VenuePreferences: []recommend.Category{recommend.CategoryRestaurant, recommend.CategoryCafe}},
		{ID: "group-yoga", Name: "Yoga Enthusiasts", Description: "Find yoga buddies and studios",
			Members: []string{"user-diana", "user-fiona", "user-hannah"}, CreatorID: "user-diana",
			VenuePreferences: []recommend.Category{recommend.CategoryGym, recommend.CategoryPark}},
		{ID: "group-music", Name: "Music Lovers", Description: "Discover live music venues",
			Members: []string{"user-charlie", "user-alice", "user-george"}, CreatorID: "user-charlie",
			VenuePreferences: []recommend.Category{recommend.CategoryNightlife}},
		{ID: "group-fitness", Name: "Fitness Freaks", Description: "Gym buddies and fitness tips",
			Members: []string{"user-bob", "user-ethan", "user-george"}, CreatorID: "user-ethan",
			VenuePreferences: []recommend.Category{recommend.CategoryGym, recommend.CategoryHiking}},
		{ID: "group-art", Name: "Art Enthusiasts", Description: "Gallery walks and art events",
			Members: []string{"user-alice", "user-charlie", "user-hannah"}, CreatorID: "user-hannah",
			VenuePreferences: []recommend.Category{recommend.CategoryArtGallery, recommend.CategoryMovieTheater}},
		{ID: "group-wine", Name: "Wine Club", Description: "Wine tastings and bar recommendations",
			Members: []string{"user-hannah", "user-bob", "user-charlie"}, CreatorID: "user-hannah",
			VenuePreferences: []recommend.Category{recommend.CategoryNightlife, recommend.CategoryRestaurant}},
		{ID: "group-outdoors", Name: "Weekend Outdoors", Description: "Beach days and trail hikes",
			Members: []string{"user-george"}, CreatorID: "user-george",
			VenuePreferences: []recommend.Category{recommend.CategoryHiking, recommend.CategoryBeach, recommend.CategoryPark}},
	}
}

// demoInteractions gives every user a history over most of the catalog.
// Views get dwell times on both sides of the label thresholds.
func demoInteractions(users []recommend.User, venues []recommend.Venue, now time.Time) []recommend.Interaction {
	rng := rand.New(rand.NewPCG(seedRandSeed, seedRandSeed>>1))
	kinds := []recommend.InteractionKind{
		recommend.InteractionView, recommend.InteractionView, recommend.InteractionView,
		recommend.InteractionClick, recommend.InteractionComment,
		recommend.InteractionLike, recommend.InteractionSave, recommend.InteractionVisit,
	}

	var out []recommend.Interaction
	for _, u := range users {
		for _, v := range venues {
			if rng.IntN(10) < 2 {
				continue
			}
			events := 1 + rng.IntN(3)
			for e := 0; e < events; e++ {
				kind := kinds[rng.IntN(len(kinds))]
				in := recommend.Interaction{
					UserID:    u.ID,
					VenueID:   v.ID,
					Kind:      kind,
					Timestamp: now.Add(-time.Duration(rng.IntN(30*24)) * time.Hour),
				}
				if kind == recommend.InteractionView {
					in.DurationSeconds = 5 + rng.IntN(116)
				}
				out = append(out, in)
			}
		}
	}
	return out
}

func demoBookings(now time.Time) []recommend.Booking {
	day := now.Truncate(24 * time.Hour)
	return []recommend.Booking{
		{ID: "booking-1", UserID: "user-bob", VenueID: "venue-the-smith", Date: day.Add(3*24*time.Hour + 19*time.Hour), PartySize: 4},
		{ID: "booking-2", UserID: "user-hannah", VenueID: "venue-balthazar", Date: day.Add(4*24*time.Hour + 20*time.Hour), PartySize: 3},
		{ID: "booking-3", UserID: "user-diana", VenueID: "venue-yoga-people", Date: day.Add(5*24*time.Hour + 9*time.Hour), PartySize: 1},
		{ID: "booking-4", UserID: "user-alice", VenueID: "venue-mercury-lounge", Date: day.Add(6*24*time.Hour + 21*time.Hour), PartySize: 2},
	}
}
