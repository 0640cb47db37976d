// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/tomtom215/lunasocial/internal/recommend/ranker"
)

func newTestEngine(t *testing.T, ds *mockDataSource, mutate func(*Config)) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Training.Forest.Trees = 20
	if mutate != nil {
		mutate(cfg)
	}
	e, err := NewEngine(cfg, ds, ranker.NewRegistry(), testLogger())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

// seedCatalog adds n venues spread north of origin, one km apart.
func seedCatalog(ds *mockDataSource, n int) {
	for i := 0; i < n; i++ {
		v := testVenue(fmt.Sprintf("v%02d", i), AllCategories[i%len(AllCategories)], northOf(origin, float64(i)))
		v.Rating = float64(i%5) + 0.5
		v.TrendingScore = float64(i%10) / 10
		ds.addVenue(v)
	}
}

// seedTrainingData adds users whose interactions yield users*venues labeled pairs.
func seedTrainingData(ds *mockDataSource, users, venues int) {
	seedCatalog(ds, venues)
	for u := 0; u < users; u++ {
		id := fmt.Sprintf("u%02d", u)
		ds.addUser(User{ID: id, Location: northOf(origin, float64(u)/2)})
		for v := 0; v < venues; v++ {
			ix := Interaction{UserID: id, VenueID: fmt.Sprintf("v%02d", v), Timestamp: time.Unix(0, 0)}
			if (u+v)%3 == 0 {
				ix.Kind = InteractionLike
			} else {
				ix.Kind = InteractionView
				ix.DurationSeconds = 4
			}
			ds.addInteraction(ix)
		}
	}
}

func TestNewEngine_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine(nil, nil, nil, testLogger()); err == nil {
		t.Error("NewEngine() without data source should fail")
	}

	cfg := DefaultConfig()
	cfg.Scoring.BlendWeight = 2
	if _, err := NewEngine(cfg, newMockDataSource(), nil, testLogger()); err == nil {
		t.Error("NewEngine() with invalid config should fail")
	}

	e, err := NewEngine(nil, newMockDataSource(), nil, testLogger())
	if err != nil {
		t.Fatalf("NewEngine() with defaults error = %v", err)
	}
	if e.ActiveModel() != nil {
		t.Error("new engine should have no model")
	}
}

func TestRecommendVenues_UnknownUser(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, newMockDataSource(), nil)
	_, err := e.RecommendVenues(context.Background(), "ghost", 5, false)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("RecommendVenues() error = %v, want ErrNotFound", err)
	}
}

func TestRecommendVenues_InvalidLocation(t *testing.T) {
	t.Parallel()

	ds := newMockDataSource()
	ds.addUser(User{ID: "u", Location: Coordinate{Latitude: 123}})
	e := newTestEngine(t, ds, nil)

	_, err := e.RecommendVenues(context.Background(), "u", 5, false)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("RecommendVenues() error = %v, want ErrInvalidInput", err)
	}
}

func TestRecommendVenues_EmptyCatalog(t *testing.T) {
	t.Parallel()

	ds := newMockDataSource()
	ds.addUser(User{ID: "u", Location: origin})
	e := newTestEngine(t, ds, nil)

	recs, err := e.RecommendVenues(context.Background(), "u", 5, true)
	if err != nil {
		t.Fatalf("RecommendVenues() error = %v", err)
	}
	if len(recs.Venues) != 0 || len(recs.Reasoning.Details) != 0 {
		t.Errorf("expected empty results, got %+v", recs)
	}
}

func TestRecommendVenues_LimitsAndOrder(t *testing.T) {
	t.Parallel()

	ds := newMockDataSource()
	seedCatalog(ds, 25)
	ds.addUser(User{ID: "u", Location: origin, Interests: []string{"venue v03"}})
	ds.addInteraction(Interaction{UserID: "u", VenueID: "v07", Kind: InteractionVisit})
	e := newTestEngine(t, ds, nil)

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"explicit limit", 4, 4},
		{"default limit", 0, 10},
		{"limit above catalog", 50, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			recs, err := e.RecommendVenues(context.Background(), "u", tt.limit, true)
			if err != nil {
				t.Fatalf("RecommendVenues() error = %v", err)
			}
			if len(recs.Venues) != tt.want {
				t.Fatalf("got %d venues, want %d", len(recs.Venues), tt.want)
			}
			if len(recs.Reasoning.Details) != len(recs.Venues) {
				t.Errorf("reasoning has %d rows for %d venues", len(recs.Reasoning.Details), len(recs.Venues))
			}
			for i, sv := range recs.Venues {
				if sv.Score < 0 || sv.Score > 1 {
					t.Errorf("score %f out of range", sv.Score)
				}
				if i > 0 && recs.Venues[i-1].Score < sv.Score {
					t.Errorf("not sorted at %d", i)
				}
				if recs.Reasoning.Details[i].VenueID != sv.Venue.ID {
					t.Errorf("reasoning row %d = %s, want %s", i, recs.Reasoning.Details[i].VenueID, sv.Venue.ID)
				}
			}
		})
	}
}

func TestRecommendVenues_LimitTooLarge(t *testing.T) {
	t.Parallel()

	ds := newMockDataSource()
	ds.addUser(User{ID: "u", Location: origin})
	e := newTestEngine(t, ds, nil)

	_, err := e.RecommendVenues(context.Background(), "u", 101, false)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("RecommendVenues() error = %v, want ErrInvalidInput", err)
	}
}

func TestRecommendVenues_ColdStartMatchesHeuristic(t *testing.T) {
	t.Parallel()

	ds := newMockDataSource()
	seedCatalog(ds, 8)
	ds.addUser(User{ID: "new", Location: origin})
	e := newTestEngine(t, ds, nil)

	recs, err := e.RecommendVenues(context.Background(), "new", 8, false)
	if err != nil {
		t.Fatalf("RecommendVenues() error = %v", err)
	}
	if recs.Reasoning != nil {
		t.Error("reasoning attached without being requested")
	}
	for _, sv := range recs.Venues {
		v := sv.Venue
		dist := math.Max(0, 1-Distance(origin, v.Location)/10)
		want := 0.25*v.Rating/5 + 0.25*dist + 0.20*v.TrendingScore + 0.25*0.5*0.1 + 0.05*float64(v.Capacity)/1000
		if math.Abs(sv.Score-want) > 1e-9 {
			t.Errorf("%s score = %f, want %f", v.ID, sv.Score, want)
		}
	}
}

func TestRecommendVenues_BookingExclusion(t *testing.T) {
	t.Parallel()

	build := func(exclude bool) (*Engine, *mockDataSource) {
		ds := newMockDataSource()
		seedCatalog(ds, 3)
		ds.addUser(User{ID: "u", Location: origin})
		ds.bookings["u"] = []Booking{{ID: "b1", UserID: "u", VenueID: "v00"}}
		return newTestEngine(t, ds, func(c *Config) { c.ExcludeBooked = exclude }), ds
	}

	t.Run("default keeps booked venues", func(t *testing.T) {
		e, ds := build(false)
		recs, err := e.RecommendVenues(context.Background(), "u", 10, false)
		if err != nil {
			t.Fatalf("RecommendVenues() error = %v", err)
		}
		if !containsVenue(recs.Venues, "v00") {
			t.Error("booked venue removed although exclusion is disabled")
		}
		if ds.getBookingsCalls != 0 {
			t.Errorf("bookings fetched %d times with exclusion disabled", ds.getBookingsCalls)
		}
	})

	t.Run("enabled removes booked venues", func(t *testing.T) {
		e, _ := build(true)
		recs, err := e.RecommendVenues(context.Background(), "u", 10, false)
		if err != nil {
			t.Fatalf("RecommendVenues() error = %v", err)
		}
		if containsVenue(recs.Venues, "v00") {
			t.Error("booked venue still recommended")
		}
		if len(recs.Venues) != 2 {
			t.Errorf("got %d venues, want 2", len(recs.Venues))
		}
	})
}

func TestRecommendVenues_CandidateRadius(t *testing.T) {
	t.Parallel()

	ds := newMockDataSource()
	seedCatalog(ds, 10)
	ds.addUser(User{ID: "u", Location: origin})
	e := newTestEngine(t, ds, func(c *Config) { c.CandidateRadiusKm = 3.5 })

	recs, err := e.RecommendVenues(context.Background(), "u", 10, false)
	if err != nil {
		t.Fatalf("RecommendVenues() error = %v", err)
	}
	if recs.Candidates != 4 || len(recs.Venues) != 4 {
		t.Errorf("candidates/venues = %d/%d, want 4/4", recs.Candidates, len(recs.Venues))
	}
}

func TestRecommendVenues_DataSourceError(t *testing.T) {
	t.Parallel()

	ds := newMockDataSource()
	ds.addUser(User{ID: "u", Location: origin})
	ds.venuesErr = errors.New("connection refused")
	e := newTestEngine(t, ds, nil)

	if _, err := e.RecommendVenues(context.Background(), "u", 5, false); err == nil {
		t.Fatal("RecommendVenues() error = nil, want error")
	}
	if _, errs := e.Counters(); errs != 1 {
		t.Errorf("error count = %d, want 1", errs)
	}
}

func containsVenue(venues []ScoredVenue, id string) bool {
	for _, sv := range venues {
		if sv.Venue.ID == id {
			return true
		}
	}
	return false
}

func TestBuildUserProfile(t *testing.T) {
	t.Parallel()

	ds := newMockDataSource()
	seedCatalog(ds, 3)
	ds.addUser(User{ID: "u", Location: origin, Interests: []string{"tea"}})
	ds.addInteraction(Interaction{UserID: "u", VenueID: "v01", Kind: InteractionLike})
	e := newTestEngine(t, ds, nil)

	p, err := e.BuildUserProfile(context.Background(), "u")
	if err != nil {
		t.Fatalf("BuildUserProfile() error = %v", err)
	}
	if p.CategoryScores[CategoryRestaurant] != 1.0 {
		t.Errorf("CategoryScores = %v", p.CategoryScores)
	}

	if _, err := e.BuildUserProfile(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("BuildUserProfile(nobody) error = %v, want ErrNotFound", err)
	}
}

func TestRecommendUsers(t *testing.T) {
	t.Parallel()

	ds := newMockDataSource()
	seedCatalog(ds, 3)
	ds.addUser(User{ID: "me", Location: origin, Interests: []string{"jazz"}, BlockedUsers: []string{"blocked"}})
	ds.addUser(User{ID: "twin", Location: origin, Interests: []string{"jazz"}})
	ds.addUser(User{ID: "far", Location: northOf(origin, 40), Interests: []string{"golf"}})
	ds.addUser(User{ID: "blocked", Location: origin, Interests: []string{"jazz"}})
	ds.addUser(User{ID: "blocker", Location: origin, Interests: []string{"jazz"}, BlockedUsers: []string{"me"}})
	ds.addUser(User{ID: "lost", Location: Coordinate{Latitude: math.NaN()}})
	e := newTestEngine(t, ds, nil)

	matches, err := e.RecommendUsers(context.Background(), "me", 0)
	if err != nil {
		t.Fatalf("RecommendUsers() error = %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %+v", len(matches), matches)
	}
	if matches[0].User.ID != "twin" || matches[1].User.ID != "far" {
		t.Errorf("order = %s, %s; want twin, far", matches[0].User.ID, matches[1].User.ID)
	}
	if math.Abs(matches[0].Compatibility.Score-1.0) > 1e-9 {
		t.Errorf("twin compatibility = %f, want 1.0", matches[0].Compatibility.Score)
	}

	limited, err := e.RecommendUsers(context.Background(), "me", 1)
	if err != nil {
		t.Fatalf("RecommendUsers() error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("got %d matches with limit 1", len(limited))
	}
}

func TestRecommendGroups(t *testing.T) {
	t.Parallel()

	ds := newMockDataSource()
	seedCatalog(ds, 3)
	ds.addUser(User{ID: "u", Location: origin})
	ds.addInteraction(Interaction{UserID: "u", VenueID: "v00", Kind: InteractionVisit})
	ds.groups["u"] = []Group{
		{ID: "mine", Members: []string{"u", "x"}, VenuePreferences: []Category{CategoryCafe}},
		{ID: "small", Members: []string{"a"}},
		{ID: "cafe", Members: []string{"a", "b", "c", "d", "e"}, VenuePreferences: []Category{CategoryCafe}},
		{ID: "gym", Members: make([]string, 10), VenuePreferences: []Category{CategoryGym}},
	}
	e := newTestEngine(t, ds, nil)

	matches, err := e.RecommendGroups(context.Background(), "u", 0)
	if err != nil {
		t.Fatalf("RecommendGroups() error = %v", err)
	}

	wantOrder := []string{"cafe", "gym", "small"}
	if len(matches) != len(wantOrder) {
		t.Fatalf("got %d groups, want %d", len(matches), len(wantOrder))
	}
	for i, id := range wantOrder {
		if matches[i].Group.ID != id {
			t.Errorf("position %d = %s, want %s", i, matches[i].Group.ID, id)
		}
	}
}

func TestCompatibility(t *testing.T) {
	t.Parallel()

	ds := newMockDataSource()
	ds.addUser(User{ID: "a", Location: origin, Interests: []string{"x"}})
	ds.addUser(User{ID: "b", Location: origin, Interests: []string{"x"}})
	e := newTestEngine(t, ds, nil)

	got, err := e.Compatibility(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("Compatibility() error = %v", err)
	}
	if math.Abs(got.Score-1.0) > 1e-9 {
		t.Errorf("Score = %f, want 1.0", got.Score)
	}

	if _, err := e.Compatibility(context.Background(), "a", "zz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Compatibility(a, zz) error = %v, want ErrNotFound", err)
	}
}

func TestTrainRanker_InsufficientDataKeepsModel(t *testing.T) {
	t.Parallel()

	ds := newMockDataSource()
	seedTrainingData(ds, 2, 5)
	e := newTestEngine(t, ds, nil)

	before := e.ActiveModel()
	result, err := e.TrainRanker(context.Background(), 0)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("TrainRanker() error = %v, want ErrInsufficientData", err)
	}
	if !result.Skipped || result.Samples != 10 {
		t.Errorf("result = %+v, want skipped with 10 samples", result)
	}
	if e.ActiveModel() != before {
		t.Error("active model changed after skipped training")
	}

	status := e.Status()
	if status.IsTraining || status.ModelLoaded || status.LastSkippedSamples != 10 || status.LastError != "" {
		t.Errorf("status = %+v", status)
	}
}

func TestTrainRanker_PublishesModel(t *testing.T) {
	t.Parallel()

	ds := newMockDataSource()
	seedTrainingData(ds, 10, 8)
	e := newTestEngine(t, ds, nil)

	result, err := e.TrainRanker(context.Background(), 50)
	if err != nil {
		t.Fatalf("TrainRanker() error = %v", err)
	}
	if result.Samples != 80 || result.Users != 10 || result.ModelVersion != 1 {
		t.Errorf("result = %+v", result)
	}

	model := e.ActiveModel()
	if model == nil || model.Samples != 80 {
		t.Fatalf("active model = %+v", model)
	}

	recs, err := e.RecommendVenues(context.Background(), "u00", 5, true)
	if err != nil {
		t.Fatalf("RecommendVenues() error = %v", err)
	}
	if !recs.Reasoning.ModelLoaded || recs.Reasoning.ModelVersion != 1 {
		t.Errorf("reasoning = %+v", recs.Reasoning)
	}
	for _, sv := range recs.Venues {
		if sv.Breakdown.MLScore == nil {
			t.Fatalf("venue %s missing ml_score after training", sv.Venue.ID)
		}
		want := 0.5**sv.Breakdown.MLScore + 0.5*sv.Breakdown.Heuristic
		if math.Abs(sv.Score-want) > 1e-12 {
			t.Errorf("venue %s score = %f, want blended %f", sv.Venue.ID, sv.Score, want)
		}
	}

	// A retrain below the threshold must leave the trained model active.
	if _, err := e.TrainRanker(context.Background(), 1000); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("TrainRanker(1000) error = %v, want ErrInsufficientData", err)
	}
	if e.ActiveModel() != model {
		t.Error("model replaced by a skipped training run")
	}
	if s := e.Status(); !s.ModelLoaded || s.ModelVersion != 1 || s.SampleCount != 80 {
		t.Errorf("status = %+v", s)
	}
}

func TestTrainRanker_RejectsConcurrentRun(t *testing.T) {
	t.Parallel()

	ds := newMockDataSource()
	ds.userIDsGate = make(chan struct{})
	ds.userIDsEntered = make(chan struct{})
	e := newTestEngine(t, ds, nil)

	done := make(chan error, 1)
	go func() {
		_, err := e.TrainRanker(context.Background(), 0)
		done <- err
	}()

	<-ds.userIDsEntered
	if !e.Status().IsTraining {
		t.Error("status does not report training in progress")
	}
	if _, err := e.TrainRanker(context.Background(), 0); !errors.Is(err, ErrTrainingInProgress) {
		t.Errorf("second TrainRanker() error = %v, want ErrTrainingInProgress", err)
	}

	close(ds.userIDsGate)
	if err := <-done; !errors.Is(err, ErrInsufficientData) {
		t.Errorf("first TrainRanker() error = %v, want ErrInsufficientData", err)
	}
}
