// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package recommend

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"
)

// mockDataSource implements DataSource over in-memory maps.
type mockDataSource struct {
	mu sync.Mutex

	users        map[string]*User
	userOrder    []string
	venues       []Venue
	interactions map[string][]Interaction
	bookings     map[string][]Booking
	groups       map[string][]Group

	venuesErr error

	// userIDsGate, when set, blocks GetAllUserIDs until it is closed.
	userIDsGate chan struct{}
	// userIDsEntered is closed when GetAllUserIDs starts waiting on the gate.
	userIDsEntered chan struct{}

	getBookingsCalls int
}

func newMockDataSource() *mockDataSource {
	return &mockDataSource{
		users:        make(map[string]*User),
		interactions: make(map[string][]Interaction),
		bookings:     make(map[string][]Booking),
		groups:       make(map[string][]Group),
	}
}

func (m *mockDataSource) addUser(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = &u
	m.userOrder = append(m.userOrder, u.ID)
}

func (m *mockDataSource) addVenue(v Venue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.venues = append(m.venues, v)
}

func (m *mockDataSource) addInteraction(ix Interaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactions[ix.UserID] = append(m.interactions[ix.UserID], ix)
}

func (m *mockDataSource) GetUser(ctx context.Context, userID string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *mockDataSource) GetVenue(ctx context.Context, venueID string) (*Venue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.venues {
		if m.venues[i].ID == venueID {
			v := m.venues[i]
			return &v, nil
		}
	}
	return nil, fmt.Errorf("venue %s: %w", venueID, ErrNotFound)
}

func (m *mockDataSource) GetAllVenues(ctx context.Context) ([]Venue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.venuesErr != nil {
		return nil, m.venuesErr
	}
	out := make([]Venue, len(m.venues))
	copy(out, m.venues)
	return out, nil
}

func (m *mockDataSource) GetUserInteractions(ctx context.Context, userID string) ([]Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Interaction(nil), m.interactions[userID]...), nil
}

func (m *mockDataSource) GetAllUserIDs(ctx context.Context) ([]string, error) {
	if m.userIDsGate != nil {
		close(m.userIDsEntered)
		select {
		case <-m.userIDsGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.userOrder...), nil
}

func (m *mockDataSource) GetUserBookings(ctx context.Context, userID string) ([]Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getBookingsCalls++
	return append([]Booking(nil), m.bookings[userID]...), nil
}

func (m *mockDataSource) GetUserGroups(ctx context.Context, userID string) ([]Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Group(nil), m.groups[userID]...), nil
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// origin is the reference location used by most tests.
var origin = Coordinate{Latitude: 40.7128, Longitude: -74.0060}

// northOf returns the point km kilometers due north of c.
func northOf(c Coordinate, km float64) Coordinate {
	return Coordinate{Latitude: c.Latitude + km/EarthRadiusKm*180/math.Pi, Longitude: c.Longitude}
}

func testVenue(id string, cat Category, loc Coordinate) Venue {
	return Venue{
		ID:            id,
		Name:          "Venue " + id,
		Category:      cat,
		Location:      loc,
		Rating:        4.0,
		TrendingScore: 0.5,
		Capacity:      100,
	}
}
