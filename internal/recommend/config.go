// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package recommend

import (
	"fmt"
	"math"

	"github.com/tomtom215/lunasocial/internal/recommend/ranker"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Scoring controls the venue heuristic and model blending.
	Scoring ScoringConfig `json:"scoring"`

	// Compatibility controls people and group suggestions.
	Compatibility CompatibilityConfig `json:"compatibility"`

	// Training contains ranker training parameters.
	Training TrainingConfig `json:"training"`

	// Limits contains result size limits.
	Limits LimitsConfig `json:"limits"`

	// ExcludeBooked removes venues the user has already booked from venue
	// candidates. Off by default: booked venues stay recommendable.
	ExcludeBooked bool `json:"exclude_booked"`

	// CandidateRadiusKm drops venues farther than this from the user before
	// scoring. Zero disables the filter.
	CandidateRadiusKm float64 `json:"candidate_radius_km"`
}

// ScoringConfig holds the venue scoring constants.
type ScoringConfig struct {
	// FeatureWeights are the heuristic weights for the five features in
	// FeatureVector order: rating, distance, trending, category, capacity.
	FeatureWeights FeatureVector `json:"feature_weights"`

	// InterestBoost is added once per user interest found in the venue
	// name or description.
	InterestBoost float64 `json:"interest_boost"`

	// CategoryBoostFactor multiplies the user's engagement with the venue category.
	CategoryBoostFactor float64 `json:"category_boost_factor"`

	// DistanceDecayKm is the distance at which the proximity feature reaches zero.
	DistanceDecayKm float64 `json:"distance_decay_km"`

	// BlendWeight is the share of the learned ranker in the final score when a
	// model is loaded: final = w*ml + (1-w)*heuristic.
	BlendWeight float64 `json:"blend_weight"`
}

// CompatibilityConfig holds the people and group weights.
type CompatibilityConfig struct {
	InterestWeight float64 `json:"interest_weight"`
	CategoryWeight float64 `json:"category_weight"`
	LocationWeight float64 `json:"location_weight"`

	// LocationRadiusKm is the distance at which location similarity reaches zero.
	LocationRadiusKm float64 `json:"location_radius_km"`

	// GroupPreferenceWeight and GroupSizeWeight blend group suggestion scores.
	GroupPreferenceWeight float64 `json:"group_preference_weight"`
	GroupSizeWeight       float64 `json:"group_size_weight"`

	// GroupSizeTarget is the member count at which the size score saturates.
	GroupSizeTarget int `json:"group_size_target"`
}

// TrainingConfig contains ranker training parameters.
type TrainingConfig struct {
	// MinSamples is the smallest labeled dataset that will be trained on.
	MinSamples int `json:"min_samples"`

	// Workers bounds concurrent per-user dataset assembly. Zero means GOMAXPROCS.
	Workers int `json:"workers"`

	// Forest configures the ensemble.
	Forest ranker.ForestConfig `json:"forest"`
}

// LimitsConfig bounds result sizes.
type LimitsConfig struct {
	DefaultVenues int `json:"default_venues"`
	DefaultUsers  int `json:"default_users"`
	DefaultGroups int `json:"default_groups"`
	MaxLimit      int `json:"max_limit"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			FeatureWeights:      FeatureVector{0.25, 0.25, 0.20, 0.25, 0.05},
			InterestBoost:       0.15,
			CategoryBoostFactor: 0.1,
			DistanceDecayKm:     10,
			BlendWeight:         0.5,
		},
		Compatibility: CompatibilityConfig{
			InterestWeight:        0.4,
			CategoryWeight:        0.35,
			LocationWeight:        0.25,
			LocationRadiusKm:      20,
			GroupPreferenceWeight: 0.6,
			GroupSizeWeight:       0.4,
			GroupSizeTarget:       10,
		},
		Training: TrainingConfig{
			MinSamples: 50,
			Forest:     ranker.DefaultForestConfig(),
		},
		Limits: LimitsConfig{
			DefaultVenues: 10,
			DefaultUsers:  5,
			DefaultGroups: 5,
			MaxLimit:      100,
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	for i, w := range c.Scoring.FeatureWeights {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("scoring.feature_weights[%d] must be non-negative, got %f", i, w)
		}
	}
	if c.Scoring.InterestBoost < 0 {
		return fmt.Errorf("scoring.interest_boost must be non-negative, got %f", c.Scoring.InterestBoost)
	}
	if c.Scoring.CategoryBoostFactor < 0 {
		return fmt.Errorf("scoring.category_boost_factor must be non-negative, got %f", c.Scoring.CategoryBoostFactor)
	}
	if c.Scoring.DistanceDecayKm <= 0 {
		return fmt.Errorf("scoring.distance_decay_km must be positive, got %f", c.Scoring.DistanceDecayKm)
	}
	if c.Scoring.BlendWeight < 0 || c.Scoring.BlendWeight > 1 {
		return fmt.Errorf("scoring.blend_weight must be in [0, 1], got %f", c.Scoring.BlendWeight)
	}

	cc := c.Compatibility
	if cc.InterestWeight < 0 || cc.CategoryWeight < 0 || cc.LocationWeight < 0 {
		return fmt.Errorf("compatibility weights must be non-negative")
	}
	if sum := cc.InterestWeight + cc.CategoryWeight + cc.LocationWeight; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("compatibility weights must sum to 1, got %f", sum)
	}
	if cc.LocationRadiusKm <= 0 {
		return fmt.Errorf("compatibility.location_radius_km must be positive, got %f", cc.LocationRadiusKm)
	}
	if cc.GroupPreferenceWeight < 0 || cc.GroupSizeWeight < 0 {
		return fmt.Errorf("group weights must be non-negative")
	}
	if sum := cc.GroupPreferenceWeight + cc.GroupSizeWeight; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("group weights must sum to 1, got %f", sum)
	}
	if cc.GroupSizeTarget < 1 {
		return fmt.Errorf("compatibility.group_size_target must be positive, got %d", cc.GroupSizeTarget)
	}

	if c.Training.MinSamples < 1 {
		return fmt.Errorf("training.min_samples must be positive, got %d", c.Training.MinSamples)
	}
	if c.Training.Workers < 0 {
		return fmt.Errorf("training.workers must be non-negative, got %d", c.Training.Workers)
	}
	if err := c.Training.Forest.Validate(); err != nil {
		return fmt.Errorf("training.forest: %w", err)
	}

	if c.Limits.MaxLimit < 1 {
		return fmt.Errorf("limits.max_limit must be positive, got %d", c.Limits.MaxLimit)
	}
	for name, v := range map[string]int{
		"default_venues": c.Limits.DefaultVenues,
		"default_users":  c.Limits.DefaultUsers,
		"default_groups": c.Limits.DefaultGroups,
	} {
		if v < 1 || v > c.Limits.MaxLimit {
			return fmt.Errorf("limits.%s must be in [1, %d], got %d", name, c.Limits.MaxLimit, v)
		}
	}

	if c.CandidateRadiusKm < 0 {
		return fmt.Errorf("candidate_radius_km must be non-negative, got %f", c.CandidateRadiusKm)
	}

	return nil
}
