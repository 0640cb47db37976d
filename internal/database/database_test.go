// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lunasocial/internal/config"
	"github.com/tomtom215/lunasocial/internal/recommend"
)

// testDBSemaphore allows one live DuckDB connection across the package's
// tests. Concurrent CGO calls from many in-memory databases can hang under
// CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

// testDBMutex serializes New.
var testDBMutex sync.Mutex

// setupTestDB creates an in-memory database. The semaphore is held until
// the test completes, not just during creation.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	}

	type result struct {
		db  *DB
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		testDBMutex.Lock()
		db, err := New(cfg, zerolog.Nop())
		testDBMutex.Unlock()
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		t.Cleanup(func() {
			if err := res.db.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
		})
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s")
		return nil
	}
}

func testUser(id string, interests ...string) *recommend.User {
	return &recommend.User{
		ID:        id,
		Username:  id,
		Location:  recommend.Coordinate{Latitude: 40.75, Longitude: -73.98},
		Interests: interests,
	}
}

func testVenue(id string, category recommend.Category) *recommend.Venue {
	return &recommend.Venue{
		ID:            id,
		Name:          "Venue " + id,
		Description:   "test venue",
		Category:      category,
		Location:      recommend.Coordinate{Latitude: 40.76, Longitude: -73.97},
		Rating:        4.2,
		TrendingScore: 0.5,
		Capacity:      120,
	}
}

func TestNew_AppliesMigrations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	version, err := db.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	want := migrations()[len(migrations())-1].Version
	if version != want {
		t.Errorf("SchemaVersion() = %d, want %d", version, want)
	}

	history, err := db.MigrationHistory(ctx)
	if err != nil {
		t.Fatalf("MigrationHistory() error = %v", err)
	}
	if len(history) != len(migrations()) {
		t.Fatalf("history has %d entries, want %d", len(history), len(migrations()))
	}
	if history[0].Name != "index_interactions_venue" || history[0].AppliedAt.IsZero() {
		t.Errorf("unexpected first migration %+v", history[0])
	}

	// Re-running is a no-op.
	if err := db.runVersionedMigrations(); err != nil {
		t.Fatalf("second runVersionedMigrations() error = %v", err)
	}
}

func TestUserRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := testUser("u1", "coffee", "art")
	u.Friends = []string{"u2"}
	u.BlockedUsers = []string{"u3"}
	if err := db.UpsertUser(ctx, u); err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}

	got, err := db.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if got.Username != "u1" || got.Location != u.Location {
		t.Errorf("GetUser() = %+v", got)
	}
	if len(got.Interests) != 2 || got.Interests[1] != "art" {
		t.Errorf("Interests = %v", got.Interests)
	}
	if !got.HasBlocked("u3") || len(got.Friends) != 1 {
		t.Errorf("social lists lost: %+v", got)
	}

	u.Interests = []string{"hiking"}
	u.BlockedUsers = nil
	if err := db.UpsertUser(ctx, u); err != nil {
		t.Fatalf("second UpsertUser() error = %v", err)
	}
	got, err = db.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if len(got.Interests) != 1 || got.Interests[0] != "hiking" || got.HasBlocked("u3") {
		t.Errorf("upsert did not replace lists: %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.GetUser(ctx, "ghost"); !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("GetUser() error = %v, want ErrNotFound", err)
	}
	if _, err := db.GetVenue(ctx, "ghost"); !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("GetVenue() error = %v, want ErrNotFound", err)
	}
}

func TestVenues(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, v := range []*recommend.Venue{
		testVenue("v2", recommend.CategoryArtGallery),
		testVenue("v1", recommend.CategoryCafe),
	} {
		if err := db.UpsertVenue(ctx, v); err != nil {
			t.Fatalf("UpsertVenue(%s) error = %v", v.ID, err)
		}
	}

	venues, err := db.GetAllVenues(ctx)
	if err != nil {
		t.Fatalf("GetAllVenues() error = %v", err)
	}
	if len(venues) != 2 || venues[0].ID != "v1" || venues[1].ID != "v2" {
		t.Fatalf("GetAllVenues() order = %+v", venues)
	}
	if venues[1].Category != recommend.CategoryArtGallery || venues[1].Capacity != 120 {
		t.Errorf("venue fields lost: %+v", venues[1])
	}

	v, err := db.GetVenue(ctx, "v1")
	if err != nil {
		t.Fatalf("GetVenue() error = %v", err)
	}
	if v.Category != recommend.CategoryCafe || v.Rating != 4.2 {
		t.Errorf("GetVenue() = %+v", v)
	}
}

func TestUpsert_Validation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	badLat := testUser("u1")
	badLat.Location.Latitude = 91

	badRating := testVenue("v1", recommend.CategoryCafe)
	badRating.Rating = 5.5

	badCategory := testVenue("v2", recommend.Category(99))

	noCapacity := testVenue("v3", recommend.CategoryPark)
	noCapacity.Capacity = 0

	tests := []struct {
		name string
		fn   func() error
	}{
		{"user latitude", func() error { return db.UpsertUser(ctx, badLat) }},
		{"user without id", func() error { return db.UpsertUser(ctx, &recommend.User{Username: "x"}) }},
		{"venue rating", func() error { return db.UpsertVenue(ctx, badRating) }},
		{"venue category", func() error { return db.UpsertVenue(ctx, badCategory) }},
		{"venue zero capacity", func() error { return db.UpsertVenue(ctx, noCapacity) }},
		{"booking party", func() error {
			return db.UpsertBooking(ctx, &recommend.Booking{UserID: "u", VenueID: "v"})
		}},
		{"group category", func() error {
			return db.UpsertGroup(ctx, &recommend.Group{ID: "g", Name: "g", VenuePreferences: []recommend.Category{-1}})
		}},
	}
	for _, tt := range tests {
		if err := tt.fn(); !errors.Is(err, recommend.ErrInvalidInput) {
			t.Errorf("%s: error = %v, want ErrInvalidInput", tt.name, err)
		}
	}
}

func TestInteractions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.UpsertUser(ctx, testUser("u1")); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertVenue(ctx, testVenue("v1", recommend.CategoryPark)); err != nil {
		t.Fatal(err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, kind := range []recommend.InteractionKind{recommend.InteractionVisit, recommend.InteractionView} {
		id, err := db.InsertInteraction(ctx, &recommend.Interaction{
			UserID:          "u1",
			VenueID:         "v1",
			Kind:            kind,
			DurationSeconds: 10 * i,
			Timestamp:       base.Add(-time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("InsertInteraction() error = %v", err)
		}
		if id == "" {
			t.Error("InsertInteraction() returned an empty id")
		}
	}

	got, err := db.GetUserInteractions(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserInteractions() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d interactions, want 2", len(got))
	}
	if got[0].Kind != recommend.InteractionView || got[0].DurationSeconds != 10 {
		t.Errorf("interactions not ordered oldest first: %+v", got)
	}
	if !got[1].Timestamp.Equal(base) {
		t.Errorf("timestamp = %v, want %v", got[1].Timestamp, base)
	}

	_, err = db.InsertInteraction(ctx, &recommend.Interaction{UserID: "u1", VenueID: "missing", Kind: recommend.InteractionLike})
	if !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("unknown venue error = %v, want ErrNotFound", err)
	}
	_, err = db.InsertInteraction(ctx, &recommend.Interaction{UserID: "u1", VenueID: "v1", Kind: recommend.InteractionKind(42)})
	if !errors.Is(err, recommend.ErrInvalidInput) {
		t.Errorf("bad kind error = %v, want ErrInvalidInput", err)
	}
}

func TestBookingsAndGroups(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	b := &recommend.Booking{UserID: "u1", VenueID: "v1", Date: time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC), PartySize: 2}
	if err := db.UpsertBooking(ctx, b); err != nil {
		t.Fatalf("UpsertBooking() error = %v", err)
	}
	if b.ID == "" || b.Status != "confirmed" {
		t.Errorf("defaults not applied: %+v", b)
	}
	b.Status = "cancelled"
	if err := db.UpsertBooking(ctx, b); err != nil {
		t.Fatalf("second UpsertBooking() error = %v", err)
	}

	bookings, err := db.GetUserBookings(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserBookings() error = %v", err)
	}
	if len(bookings) != 1 || bookings[0].Status != "cancelled" || bookings[0].PartySize != 2 {
		t.Errorf("GetUserBookings() = %+v", bookings)
	}

	g := &recommend.Group{
		ID:               "g1",
		Name:             "Climbers",
		Members:          []string{"u1", "u2"},
		CreatorID:        "u1",
		VenuePreferences: []recommend.Category{recommend.CategoryHiking, recommend.CategoryGym},
	}
	if err := db.UpsertGroup(ctx, g); err != nil {
		t.Fatalf("UpsertGroup() error = %v", err)
	}
	groups, err := db.GetUserGroups(ctx, "u3")
	if err != nil {
		t.Fatalf("GetUserGroups() error = %v", err)
	}
	if len(groups) != 1 || !groups[0].HasMember("u2") {
		t.Fatalf("GetUserGroups() = %+v", groups)
	}
	if len(groups[0].VenuePreferences) != 2 || groups[0].VenuePreferences[0] != recommend.CategoryHiking {
		t.Errorf("VenuePreferences = %v", groups[0].VenuePreferences)
	}
}

func TestSeedMockData(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	summary, err := db.SeedMockData(ctx)
	if err != nil {
		t.Fatalf("SeedMockData() error = %v", err)
	}
	if summary.Users != len(demoUsers()) || summary.Venues != len(demoVenues()) || summary.Interactions == 0 {
		t.Errorf("summary = %+v", summary)
	}

	counts, err := db.GetRecordCounts(ctx)
	if err != nil {
		t.Fatalf("GetRecordCounts() error = %v", err)
	}
	if counts.Users != int64(summary.Users) || counts.Interactions != int64(summary.Interactions) ||
		counts.Bookings != int64(summary.Bookings) || counts.Groups != int64(summary.Groups) {
		t.Errorf("counts %+v do not match summary %+v", counts, summary)
	}

	// A second run leaves existing data alone.
	again, err := db.SeedMockData(ctx)
	if err != nil {
		t.Fatalf("second SeedMockData() error = %v", err)
	}
	if again.Users != 0 {
		t.Errorf("second seed wrote %d users", again.Users)
	}
}

func TestSeedMockData_Deterministic(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := demoInteractions(demoUsers(), demoVenues(), now)
	b := demoInteractions(demoUsers(), demoVenues(), now)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("interaction %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

// TestSeedMockData_EnoughToTrain runs the engine over the seeded store.
func TestSeedMockData_EnoughToTrain(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.SeedMockData(ctx); err != nil {
		t.Fatalf("SeedMockData() error = %v", err)
	}

	cfg := recommend.DefaultConfig()
	cfg.Training.Forest.Trees = 10
	engine, err := recommend.NewEngine(cfg, db, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	result, err := engine.TrainRanker(ctx, 0)
	if err != nil {
		t.Fatalf("TrainRanker() error = %v", err)
	}
	if result.Skipped || result.Samples < cfg.Training.MinSamples {
		t.Errorf("TrainRanker() = %+v", result)
	}

	recs, err := engine.RecommendVenues(ctx, "user-alice", 5, false)
	if err != nil {
		t.Fatalf("RecommendVenues() error = %v", err)
	}
	if len(recs.Venues) != 5 {
		t.Errorf("got %d venues, want 5", len(recs.Venues))
	}
}
