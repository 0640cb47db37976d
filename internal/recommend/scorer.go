// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tomtom215/lunasocial/internal/recommend/ranker"
)

// ModelSource provides the currently active learned ranker. Active returns
// nil while no model has been trained.
type ModelSource interface {
	Active() *ranker.Model
}

// Scorer combines the venue heuristic with the optional learned ranker.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	cfg    ScoringConfig
	models ModelSource
	fx     featureExtractor
}

// NewScorer creates a scorer. models may be nil for heuristic-only scoring.
func NewScorer(cfg ScoringConfig, models ModelSource) *Scorer {
	return &Scorer{
		cfg:    cfg,
		models: models,
		fx:     featureExtractor{decayKm: cfg.DistanceDecayKm},
	}
}

// activeModel loads the model once so a single ranking never mixes versions.
func (s *Scorer) activeModel() *ranker.Model {
	if s.models == nil {
		return nil
	}
	return s.models.Active()
}

// Rank scores every venue against profile and returns them sorted by
// descending score. Equal scores keep catalog order. The model used, if any,
// is returned alongside.
func (s *Scorer) Rank(p *UserProfile, venues []Venue) ([]ScoredVenue, *ranker.Model) {
	model := s.activeModel()
	interests := normalizeInterests(p.Interests)

	scored := make([]ScoredVenue, len(venues))
	for i := range venues {
		scored[i] = s.score(&venues[i], p, interests, model)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored, model
}

// score computes one venue's final score and breakdown.
func (s *Scorer) score(v *Venue, p *UserProfile, interests []string, model *ranker.Model) ScoredVenue {
	features := s.fx.extract(v, p)
	base := features.Dot(s.cfg.FeatureWeights)

	matched := matchInterests(v, interests)
	interestBoost := float64(len(matched)) * s.cfg.InterestBoost
	categoryBoost := p.CategoryScores[v.Category] * s.cfg.CategoryBoostFactor
	heuristic := math.Min(1.0, base+interestBoost+categoryBoost)

	breakdown := ScoreBreakdown{
		Rating:        features[FeatureRating],
		Distance:      features[FeatureDistance],
		Trending:      features[FeatureTrending],
		Category:      features[FeatureCategory],
		Capacity:      features[FeatureCapacity],
		InterestBoost: interestBoost,
		CategoryBoost: categoryBoost,
		Heuristic:     heuristic,
	}

	final := heuristic
	if model != nil {
		ml := model.Predict(features.Slice())
		breakdown.MLScore = &ml
		final = s.cfg.BlendWeight*ml + (1-s.cfg.BlendWeight)*heuristic
	}

	return ScoredVenue{
		Venue:     *v,
		Score:     final,
		Breakdown: breakdown,
		Reason:    reasonFor(v, matched, categoryBoost, features[FeatureDistance]),
	}
}

// normalizeInterests lowercases and trims interests, dropping blanks.
func normalizeInterests(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// matchInterests returns the interests found in the venue name or description.
// Interests must already be normalized.
func matchInterests(v *Venue, interests []string) []string {
	if len(interests) == 0 {
		return nil
	}
	name := strings.ToLower(v.Name)
	desc := strings.ToLower(v.Description)

	var matched []string
	for _, interest := range interests {
		if strings.Contains(name, interest) || strings.Contains(desc, interest) {
			matched = append(matched, interest)
		}
	}
	return matched
}

// reasonFor produces the one-line explanation shown next to a venue.
func reasonFor(v *Venue, matched []string, categoryBoost, proximity float64) string {
	switch {
	case len(matched) > 0:
		return fmt.Sprintf("Matches your interest in %s", matched[0])
	case categoryBoost > 0:
		return fmt.Sprintf("Because you engage with %s venues", v.Category)
	case proximity > 0:
		return fmt.Sprintf("Popular %s venue nearby", v.Category)
	default:
		return fmt.Sprintf("Highly rated %s venue", v.Category)
	}
}
