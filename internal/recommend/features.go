// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package recommend

// FeatureCount is the width of a FeatureVector.
const FeatureCount = 5

// Feature positions within a FeatureVector.
const (
	FeatureRating = iota
	FeatureDistance
	FeatureTrending
	FeatureCategory
	FeatureCapacity
)

const (
	// unseenCategoryMatch is the match factor for categories the user never engaged with.
	unseenCategoryMatch = 0.5

	// unseenCategoryEngagement is the weak prior used in place of engagement.
	unseenCategoryEngagement = 0.1
)

// FeatureVector holds the five venue features in fixed order:
// rating, distance, trending, category, capacity.
type FeatureVector [FeatureCount]float64

// Slice returns the features as a slice for the ranker.
func (f FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureCount)
	copy(out, f[:])
	return out
}

// Dot returns the weighted sum of the features.
func (f FeatureVector) Dot(w FeatureVector) float64 {
	sum := 0.0
	for i := range f {
		sum += f[i] * w[i]
	}
	return sum
}

// featureExtractor builds feature vectors for one profile.
type featureExtractor struct {
	decayKm float64
}

// extract converts a venue into its feature vector relative to profile.
// Categories absent from the profile fall back to a weak prior; it never fails.
func (e featureExtractor) extract(v *Venue, p *UserProfile) FeatureVector {
	match := unseenCategoryMatch
	engagement, seen := p.CategoryScores[v.Category]
	if seen {
		match = 1.0
	} else {
		engagement = unseenCategoryEngagement
	}

	return FeatureVector{
		FeatureRating:   v.Rating / 5.0,
		FeatureDistance: proximity(p.Location, v.Location, e.decayKm),
		FeatureTrending: v.TrendingScore,
		FeatureCategory: match * engagement,
		FeatureCapacity: float64(v.Capacity) / 1000.0,
	}
}

// ExtractFeatures computes the feature vector with the default 10 km decay.
func ExtractFeatures(v *Venue, p *UserProfile) FeatureVector {
	return featureExtractor{decayKm: DefaultConfig().Scoring.DistanceDecayKm}.extract(v, p)
}
