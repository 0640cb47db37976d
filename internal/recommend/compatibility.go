// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package recommend

import (
	"fmt"
	"math"
	"sort"
)

const (
	// bothEmptyInterestOverlap is used when neither user listed interests.
	bothEmptyInterestOverlap = 0.5

	// bothEmptyCategoryOverlap is used when neither user has engaged with any
	// category. Two cold-start users have identical (empty) behavior.
	bothEmptyCategoryOverlap = 1.0

	// noPreferenceOverlap is used for groups that declared no venue preferences.
	noPreferenceOverlap = 0.5
)

// CompatibilityScorer computes symmetric user similarity and group fit.
type CompatibilityScorer struct {
	cfg CompatibilityConfig
}

// NewCompatibilityScorer creates a scorer with the given weights.
func NewCompatibilityScorer(cfg CompatibilityConfig) *CompatibilityScorer {
	return &CompatibilityScorer{cfg: cfg}
}

// Compare returns the compatibility of two profiles. The result is the same
// for Compare(a, b) and Compare(b, a). Both locations are required.
func (s *CompatibilityScorer) Compare(a, b *UserProfile) (CompatibilityResult, error) {
	if err := a.Location.Validate(); err != nil {
		return CompatibilityResult{}, fmt.Errorf("user %s location: %w", a.UserID, err)
	}
	if err := b.Location.Validate(); err != nil {
		return CompatibilityResult{}, fmt.Errorf("user %s location: %w", b.UserID, err)
	}

	interest := jaccard(stringSet(a.Interests), stringSet(b.Interests), bothEmptyInterestOverlap)
	category := jaccard(a.Categories(), b.Categories(), bothEmptyCategoryOverlap)
	location := proximity(a.Location, b.Location, s.cfg.LocationRadiusKm)

	score := s.cfg.InterestWeight*interest +
		s.cfg.CategoryWeight*category +
		s.cfg.LocationWeight*location

	return CompatibilityResult{
		UserA:           a.UserID,
		UserB:           b.UserID,
		Score:           math.Min(1, score),
		InterestOverlap: interest,
		CategoryOverlap: category,
		LocationScore:   location,
	}, nil
}

// ScoreGroup rates how well a group fits the profile by preference overlap
// and group size.
func (s *CompatibilityScorer) ScoreGroup(p *UserProfile, g *Group) GroupMatch {
	overlap := noPreferenceOverlap
	if prefs := categorySet(g.VenuePreferences); len(prefs) > 0 {
		shared := 0
		for c := range prefs {
			if _, ok := p.CategoryScores[c]; ok {
				shared++
			}
		}
		overlap = float64(shared) / float64(len(prefs))
	}

	size := math.Min(1, float64(len(g.Members))/float64(s.cfg.GroupSizeTarget))

	return GroupMatch{
		Group:             *g,
		Score:             s.cfg.GroupPreferenceWeight*overlap + s.cfg.GroupSizeWeight*size,
		PreferenceOverlap: overlap,
		SizeScore:         size,
	}
}

// sortUserMatches orders matches by descending score, keeping input order on ties.
func sortUserMatches(matches []UserMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Compatibility.Score > matches[j].Compatibility.Score
	})
}

// sortGroupMatches orders matches by descending score, keeping input order on ties.
func sortGroupMatches(matches []GroupMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
}

// jaccard returns |a ∩ b| / |a ∪ b|, or bothEmpty when both sets are empty.
func jaccard[K comparable](a, b map[K]struct{}, bothEmpty float64) float64 {
	if len(a) == 0 && len(b) == 0 {
		return bothEmpty
	}
	shared := 0
	for k := range a {
		if _, ok := b[k]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(a)+len(b)-shared)
}

// stringSet normalizes interests into a set.
func stringSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range normalizeInterests(items) {
		set[s] = struct{}{}
	}
	return set
}

func categorySet(items []Category) map[Category]struct{} {
	set := make(map[Category]struct{}, len(items))
	for _, c := range items {
		set[c] = struct{}{}
	}
	return set
}
