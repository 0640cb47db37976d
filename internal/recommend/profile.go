// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package recommend

// Engagement weights per counted interaction kind.
const (
	viewWeight  = 0.3
	likeWeight  = 1.0
	saveWeight  = 1.5
	visitWeight = 2.0
)

// categoryCounters accumulates the counted interactions for one category.
type categoryCounters struct {
	views, likes, saves, visits int
}

func (c categoryCounters) score() float64 {
	return float64(c.views)*viewWeight +
		float64(c.likes)*likeWeight +
		float64(c.saves)*saveWeight +
		float64(c.visits)*visitWeight
}

// BuildProfile derives a user's behavior profile from their complete
// interaction history. Interactions whose venue is not in catalog are
// counted toward TotalEngagement only. The result depends only on its
// inputs; nothing is cached between calls.
func BuildProfile(user *User, interactions []Interaction, catalog map[string]Venue) *UserProfile {
	counters := make(map[Category]*categoryCounters)
	totalViewSeconds, viewCount := 0, 0

	for _, ix := range interactions {
		venue, ok := catalog[ix.VenueID]
		if !ok {
			continue
		}
		c := counters[venue.Category]
		if c == nil {
			c = &categoryCounters{}
		}

		switch ix.Kind {
		case InteractionView:
			c.views++
			viewCount++
			totalViewSeconds += ix.DurationSeconds
		case InteractionLike:
			c.likes++
		case InteractionSave:
			c.saves++
		case InteractionVisit:
			c.visits++
		case InteractionComment, InteractionClick:
			continue
		default:
			continue
		}
		counters[venue.Category] = c
	}

	scores := make(map[Category]float64, len(counters))
	for cat, c := range counters {
		scores[cat] = c.score()
	}

	interests := make([]string, len(user.Interests))
	copy(interests, user.Interests)

	return &UserProfile{
		UserID:          user.ID,
		Location:        user.Location,
		Interests:       interests,
		CategoryScores:  scores,
		TotalEngagement: len(interactions),
		AvgViewSeconds:  float64(totalViewSeconds) / float64(max(1, viewCount)),
	}
}

// Categories returns the set of categories the profile has engaged with.
func (p *UserProfile) Categories() map[Category]struct{} {
	set := make(map[Category]struct{}, len(p.CategoryScores))
	for c := range p.CategoryScores {
		set[c] = struct{}{}
	}
	return set
}
