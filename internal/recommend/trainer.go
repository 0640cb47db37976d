// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package recommend

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// View durations that produce a label. Views in between carry no signal.
const (
	shortViewSeconds = 15
	longViewSeconds  = 60
)

// LabelFor derives the training label of a single interaction.
// LIKE, SAVE and VISIT are positive; a VIEW of at most 15 seconds is
// negative and one of at least 60 seconds is positive. Everything else is
// unlabeled.
func LabelFor(ix Interaction) (float64, bool) {
	switch ix.Kind {
	case InteractionLike, InteractionSave, InteractionVisit:
		return 1.0, true
	case InteractionView:
		switch {
		case ix.DurationSeconds <= shortViewSeconds:
			return 0.0, true
		case ix.DurationSeconds >= longViewSeconds:
			return 1.0, true
		}
		return 0, false
	case InteractionComment, InteractionClick:
		return 0, false
	default:
		return 0, false
	}
}

// AggregateLabels keeps the maximum label per venue. One positive signal
// outweighs any number of negative ones for the same venue.
func AggregateLabels(interactions []Interaction) map[string]float64 {
	labels := make(map[string]float64)
	for _, ix := range interactions {
		label, ok := LabelFor(ix)
		if !ok {
			continue
		}
		if prev, seen := labels[ix.VenueID]; !seen || label > prev {
			labels[ix.VenueID] = label
		}
	}
	return labels
}

// datasetBuilder assembles training samples from the data source.
type datasetBuilder struct {
	data    DataSource
	fx      featureExtractor
	workers int
}

// build returns one sample per labeled (user, venue) pair, ordered by the
// data source's user order and then by venue id. It also reports how many
// users contributed at least one sample.
func (b *datasetBuilder) build(ctx context.Context) ([]TrainingSample, int, error) {
	userIDs, err := b.data.GetAllUserIDs(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("get user ids: %w", err)
	}
	if len(userIDs) == 0 {
		return nil, 0, nil
	}

	venues, err := b.data.GetAllVenues(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("get venues: %w", err)
	}
	catalog := indexVenues(venues)

	perUser := make([][]TrainingSample, len(userIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, id := range userIDs {
		g.Go(func() error {
			samples, err := b.userSamples(gctx, id, catalog)
			if err != nil {
				return fmt.Errorf("user %s: %w", id, err)
			}
			perUser[i] = samples
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var samples []TrainingSample
	users := 0
	for _, s := range perUser {
		if len(s) > 0 {
			users++
		}
		samples = append(samples, s...)
	}
	return samples, users, nil
}

// userSamples builds the labeled samples of one user. Users or venues that
// vanished since the id listing are skipped.
func (b *datasetBuilder) userSamples(ctx context.Context, userID string, catalog map[string]Venue) ([]TrainingSample, error) {
	user, err := b.data.GetUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	interactions, err := b.data.GetUserInteractions(ctx, userID)
	if err != nil {
		return nil, err
	}

	labels := AggregateLabels(interactions)
	if len(labels) == 0 {
		return nil, nil
	}

	profile := BuildProfile(user, interactions, catalog)

	venueIDs := make([]string, 0, len(labels))
	for id := range labels {
		venueIDs = append(venueIDs, id)
	}
	sort.Strings(venueIDs)

	samples := make([]TrainingSample, 0, len(venueIDs))
	for _, venueID := range venueIDs {
		venue, ok := catalog[venueID]
		if !ok {
			v, err := b.data.GetVenue(ctx, venueID)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			venue = *v
		}
		samples = append(samples, TrainingSample{
			UserID:   userID,
			VenueID:  venueID,
			Features: b.fx.extract(&venue, profile),
			Label:    labels[venueID],
		})
	}
	return samples, nil
}

// matrix splits samples into the feature matrix and label vector.
func matrix(samples []TrainingSample) ([][]float64, []float64, int) {
	x := make([][]float64, len(samples))
	y := make([]float64, len(samples))
	positives := 0
	for i, s := range samples {
		x[i] = s.Features.Slice()
		y[i] = s.Label
		if s.Label > 0 {
			positives++
		}
	}
	return x, y, positives
}

// indexVenues maps venue id to venue.
func indexVenues(venues []Venue) map[string]Venue {
	catalog := make(map[string]Venue, len(venues))
	for _, v := range venues {
		catalog[v.ID] = v
	}
	return catalog
}

// workerCount resolves a configured worker count, zero meaning GOMAXPROCS.
func workerCount(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}
