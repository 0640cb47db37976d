// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package recommend

import (
	"fmt"
	"strings"
	"time"
)

// Category is the closed set of venue categories. Every venue has exactly one.
type Category int

const (
	CategoryCafe Category = iota
	CategoryRestaurant
	CategoryNightlife
	CategoryHiking
	CategoryArtGallery
	CategoryMovieTheater
	CategoryPark
	CategoryBeach
	CategoryShopping
	CategoryGym
)

// AllCategories lists every category in declaration order.
var AllCategories = []Category{
	CategoryCafe,
	CategoryRestaurant,
	CategoryNightlife,
	CategoryHiking,
	CategoryArtGallery,
	CategoryMovieTheater,
	CategoryPark,
	CategoryBeach,
	CategoryShopping,
	CategoryGym,
}

// String returns the display name of the category.
func (c Category) String() string {
	switch c {
	case CategoryCafe:
		return "Café"
	case CategoryRestaurant:
		return "Restaurant"
	case CategoryNightlife:
		return "Nightlife"
	case CategoryHiking:
		return "Hiking"
	case CategoryArtGallery:
		return "Art Gallery"
	case CategoryMovieTheater:
		return "Movie Theater"
	case CategoryPark:
		return "Park"
	case CategoryBeach:
		return "Beach"
	case CategoryShopping:
		return "Shopping"
	case CategoryGym:
		return "Gym"
	default:
		return "unknown"
	}
}

// Slug returns the lowercase, ASCII identifier used in URLs and storage.
func (c Category) Slug() string {
	switch c {
	case CategoryCafe:
		return "cafe"
	case CategoryRestaurant:
		return "restaurant"
	case CategoryNightlife:
		return "nightlife"
	case CategoryHiking:
		return "hiking"
	case CategoryArtGallery:
		return "art_gallery"
	case CategoryMovieTheater:
		return "movie_theater"
	case CategoryPark:
		return "park"
	case CategoryBeach:
		return "beach"
	case CategoryShopping:
		return "shopping"
	case CategoryGym:
		return "gym"
	default:
		return "unknown"
	}
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	return c >= CategoryCafe && c <= CategoryGym
}

// ParseCategory accepts a display name ("Art Gallery") or a slug ("art_gallery").
// Matching is case-insensitive.
func ParseCategory(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, c := range AllCategories {
		if name == c.Slug() || name == strings.ToLower(c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q: %w", s, ErrInvalidInput)
}

// MarshalText encodes the category as its slug.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("category %d: %w", int(c), ErrInvalidInput)
	}
	return []byte(c.Slug()), nil
}

// UnmarshalText decodes a slug or display name.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// InteractionKind classifies a user's interaction with a venue.
type InteractionKind int

const (
	InteractionView InteractionKind = iota
	InteractionLike
	InteractionComment
	InteractionSave
	InteractionClick
	InteractionVisit
)

// String returns the lowercase wire name of the interaction kind.
func (k InteractionKind) String() string {
	switch k {
	case InteractionView:
		return "view"
	case InteractionLike:
		return "like"
	case InteractionComment:
		return "comment"
	case InteractionSave:
		return "save"
	case InteractionClick:
		return "click"
	case InteractionVisit:
		return "visit"
	default:
		return "unknown"
	}
}

// ParseInteractionKind parses the wire name of an interaction kind.
func ParseInteractionKind(s string) (InteractionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "view":
		return InteractionView, nil
	case "like":
		return InteractionLike, nil
	case "comment":
		return InteractionComment, nil
	case "save":
		return InteractionSave, nil
	case "click":
		return InteractionClick, nil
	case "visit":
		return InteractionVisit, nil
	default:
		return 0, fmt.Errorf("unknown interaction kind %q: %w", s, ErrInvalidInput)
	}
}

// MarshalText encodes the kind as its wire name.
func (k InteractionKind) MarshalText() ([]byte, error) {
	if k < InteractionView || k > InteractionVisit {
		return nil, fmt.Errorf("interaction kind %d: %w", int(k), ErrInvalidInput)
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a wire name.
func (k *InteractionKind) UnmarshalText(text []byte) error {
	parsed, err := ParseInteractionKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Venue is a read-only catalog entry.
type Venue struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Category    Category   `json:"category"`
	Location    Coordinate `json:"location"`

	// Rating is the average review rating in [0,5].
	Rating float64 `json:"rating"`

	// TrendingScore is an externally computed popularity measure in [0,1].
	TrendingScore float64 `json:"trending_score"`

	Capacity int `json:"capacity"`
}

// User is the subset of a user record the engine reads.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Location     Coordinate `json:"location"`
	Interests    []string   `json:"interests"`
	Friends      []string   `json:"friends,omitempty"`
	BlockedUsers []string   `json:"blocked_users,omitempty"`
}

// HasBlocked reports whether u has blocked the given user.
func (u *User) HasBlocked(userID string) bool {
	for _, id := range u.BlockedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// Interaction is one entry of the append-only interaction log.
type Interaction struct {
	UserID          string          `json:"user_id"`
	VenueID         string          `json:"venue_id"`
	Kind            InteractionKind `json:"kind"`
	DurationSeconds int             `json:"duration_seconds"`
	Timestamp       time.Time       `json:"timestamp"`
}

// Booking is a reservation made by a user.
type Booking struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	VenueID   string    `json:"venue_id"`
	Date      time.Time `json:"date"`
	PartySize int       `json:"party_size"`
	Status    string    `json:"status"`
}

// Group is a social group with optional venue preferences.
type Group struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	Members          []string   `json:"members"`
	CreatorID        string     `json:"creator_id"`
	VenuePreferences []Category `json:"venue_preferences,omitempty"`
}

// HasMember reports whether the user belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, id := range g.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// UserProfile is the behavior profile derived from a user's full interaction
// history. It is never persisted and never updated incrementally.
type UserProfile struct {
	UserID    string     `json:"user_id"`
	Location  Coordinate `json:"location"`
	Interests []string   `json:"interests"`

	// CategoryScores holds the weighted engagement per category. Categories
	// with no counted interactions are absent.
	CategoryScores map[Category]float64 `json:"category_scores"`

	// TotalEngagement counts every interaction in the history.
	TotalEngagement int `json:"total_engagement"`

	AvgViewSeconds float64 `json:"avg_view_seconds"`
}

// ScoreBreakdown explains how a venue's final score was produced.
type ScoreBreakdown struct {
	Rating        float64 `json:"rating"`
	Distance      float64 `json:"distance"`
	Trending      float64 `json:"trending"`
	Category      float64 `json:"category"`
	Capacity      float64 `json:"capacity"`
	InterestBoost float64 `json:"interest_boost"`
	CategoryBoost float64 `json:"category_boost"`

	// Heuristic is the clamped heuristic score before any model blending.
	Heuristic float64 `json:"heuristic"`

	// MLScore is set whenever a trained ranker is loaded.
	MLScore *float64 `json:"ml_score,omitempty"`
}

// ScoredVenue is a venue with its final score and explanation.
type ScoredVenue struct {
	Venue     Venue          `json:"venue"`
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Reason    string         `json:"reason"`
}

// VenueReasoning is one row of the explainability report.
type VenueReasoning struct {
	VenueID    string         `json:"venue_id"`
	VenueName  string         `json:"venue_name"`
	Breakdown  ScoreBreakdown `json:"breakdown"`
	FinalScore float64        `json:"final_score"`
}

// Reasoning describes how a venue ranking was computed.
type Reasoning struct {
	Algorithm    string           `json:"algorithm"`
	ModelLoaded  bool             `json:"model_loaded"`
	ModelVersion int64            `json:"model_version,omitempty"`
	BlendWeight  float64          `json:"blend_weight"`
	Details      []VenueReasoning `json:"details"`
}

// VenueRecommendations is the result of RecommendVenues.
type VenueRecommendations struct {
	UserID     string        `json:"user_id"`
	Venues     []ScoredVenue `json:"venues"`
	Candidates int           `json:"candidates"`
	Reasoning  *Reasoning    `json:"reasoning,omitempty"`
}

// CompatibilityResult is the pairwise similarity between two users.
type CompatibilityResult struct {
	UserA string  `json:"user_a"`
	UserB string  `json:"user_b"`
	Score float64 `json:"score"`

	InterestOverlap float64 `json:"interest_overlap"`
	CategoryOverlap float64 `json:"category_overlap"`
	LocationScore   float64 `json:"location_score"`
}

// UserMatch pairs a candidate user with their compatibility to the requester.
type UserMatch struct {
	User          User                `json:"user"`
	Compatibility CompatibilityResult `json:"compatibility"`
}

// GroupMatch is a scored group suggestion.
type GroupMatch struct {
	Group             Group   `json:"group"`
	Score             float64 `json:"score"`
	PreferenceOverlap float64 `json:"preference_overlap"`
	SizeScore         float64 `json:"size_score"`
}

// TrainingSample is one labeled feature vector used to fit the ranker.
type TrainingSample struct {
	UserID   string        `json:"user_id"`
	VenueID  string        `json:"venue_id"`
	Features FeatureVector `json:"features"`
	Label    float64       `json:"label"`
}

// TrainingResult summarizes one call to TrainRanker.
type TrainingResult struct {
	Samples      int           `json:"samples"`
	Positives    int           `json:"positives"`
	Users        int           `json:"users"`
	ModelVersion int64         `json:"model_version"`
	Duration     time.Duration `json:"duration"`
	Skipped      bool          `json:"skipped"`
}

// TrainingStatus is the observable state of the ranker trainer.
type TrainingStatus struct {
	IsTraining         bool      `json:"is_training"`
	ModelLoaded        bool      `json:"model_loaded"`
	ModelVersion       int64     `json:"model_version"`
	SampleCount        int       `json:"sample_count"`
	LastTrainedAt      time.Time `json:"last_trained_at,omitempty"`
	LastAttemptAt      time.Time `json:"last_attempt_at,omitempty"`
	LastError          string    `json:"last_error,omitempty"`
	LastSkippedSamples int       `json:"last_skipped_samples,omitempty"`
}
