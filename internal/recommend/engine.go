// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/lunasocial/internal/recommend/ranker"
)

// Note: This package depends only on its ranker subpackage. The DataSource
// interface allows integration with the database package without creating
// circular imports.

// algorithmName identifies the venue ranking in explainability reports.
const algorithmName = "hybrid"

// Engine exposes venue, people and group recommendations plus ranker
// training. Scoring calls share no mutable state; the only state written
// after construction is the model registry and the training status.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger
	data   DataSource

	registry *ranker.Registry
	scorer   *Scorer
	compat   *CompatibilityScorer

	// Training state
	trainMu  sync.Mutex
	statusMu sync.RWMutex
	status   TrainingStatus

	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewEngine creates a recommendation engine. A nil registry creates an empty one.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, data DataSource, registry *ranker.Registry, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if data == nil {
		return nil, errors.New("data source is required")
	}
	if registry == nil {
		registry = ranker.NewRegistry()
	}

	return &Engine{
		config:   cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		data:     data,
		registry: registry,
		scorer:   NewScorer(cfg.Scoring, registry),
		compat:   NewCompatibilityScorer(cfg.Compatibility),
	}, nil
}

// RecommendVenues ranks the catalog for a user. At most limit venues are
// returned; limit <= 0 selects the configured default. With withReasoning
// the per-venue breakdown is attached, ordered the same way.
func (e *Engine) RecommendVenues(ctx context.Context, userID string, limit int, withReasoning bool) (*VenueRecommendations, error) {
	e.requestCount.Add(1)
	start := time.Now()

	limit, err := e.resolveLimit(limit, e.config.Limits.DefaultVenues)
	if err != nil {
		return nil, err
	}

	user, err := e.loadUser(ctx, userID)
	if err != nil {
		return nil, e.fail(err)
	}

	venues, err := e.data.GetAllVenues(ctx)
	if err != nil {
		return nil, e.fail(fmt.Errorf("get venues: %w", err))
	}

	profile, err := e.profileFor(ctx, user, indexVenues(venues))
	if err != nil {
		return nil, e.fail(err)
	}

	candidates, err := e.filterCandidates(ctx, profile, venues)
	if err != nil {
		return nil, e.fail(err)
	}

	ranked, model := e.scorer.Rank(profile, candidates)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	recs := &VenueRecommendations{
		UserID:     userID,
		Venues:     ranked,
		Candidates: len(candidates),
	}
	if withReasoning {
		recs.Reasoning = e.buildReasoning(ranked, model)
	}

	e.logger.Debug().
		Str("user_id", userID).
		Int("catalog", len(venues)).
		Int("candidates", len(candidates)).
		Int("returned", len(ranked)).
		Bool("model", model != nil).
		Dur("latency", time.Since(start)).
		Msg("venue recommendation complete")

	return recs, nil
}

// buildReasoning converts ranked venues into the explainability report.
func (e *Engine) buildReasoning(ranked []ScoredVenue, model *ranker.Model) *Reasoning {
	details := make([]VenueReasoning, len(ranked))
	for i, sv := range ranked {
		details[i] = VenueReasoning{
			VenueID:    sv.Venue.ID,
			VenueName:  sv.Venue.Name,
			Breakdown:  sv.Breakdown,
			FinalScore: sv.Score,
		}
	}

	r := &Reasoning{
		Algorithm:   algorithmName,
		ModelLoaded: model != nil,
		Details:     details,
	}
	if model != nil {
		r.ModelVersion = model.Version
		r.BlendWeight = e.config.Scoring.BlendWeight
	}
	return r
}

// filterCandidates applies the optional booking exclusion and radius filter.
func (e *Engine) filterCandidates(ctx context.Context, profile *UserProfile, venues []Venue) ([]Venue, error) {
	if !e.config.ExcludeBooked && e.config.CandidateRadiusKm <= 0 {
		return venues, nil
	}

	booked := make(map[string]struct{})
	if e.config.ExcludeBooked {
		bookings, err := e.data.GetUserBookings(ctx, profile.UserID)
		if err != nil {
			return nil, fmt.Errorf("get bookings: %w", err)
		}
		for _, b := range bookings {
			booked[b.VenueID] = struct{}{}
		}
	}

	out := make([]Venue, 0, len(venues))
	for _, v := range venues {
		if _, ok := booked[v.ID]; ok {
			continue
		}
		if e.config.CandidateRadiusKm > 0 && Distance(profile.Location, v.Location) > e.config.CandidateRadiusKm {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// BuildUserProfile returns the behavior profile of a user.
func (e *Engine) BuildUserProfile(ctx context.Context, userID string) (*UserProfile, error) {
	e.requestCount.Add(1)

	profile, err := e.userProfile(ctx, userID)
	if err != nil {
		return nil, e.fail(err)
	}
	return profile, nil
}

// userProfile loads everything needed to build one user's profile.
func (e *Engine) userProfile(ctx context.Context, userID string) (*UserProfile, error) {
	user, err := e.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	venues, err := e.data.GetAllVenues(ctx)
	if err != nil {
		return nil, fmt.Errorf("get venues: %w", err)
	}

	return e.profileFor(ctx, user, indexVenues(venues))
}

// RecommendUsers ranks other users by compatibility. The requester, users
// they blocked and users who blocked them are excluded. Candidates without
// a valid location are skipped.
func (e *Engine) RecommendUsers(ctx context.Context, userID string, limit int) ([]UserMatch, error) {
	e.requestCount.Add(1)

	limit, err := e.resolveLimit(limit, e.config.Limits.DefaultUsers)
	if err != nil {
		return nil, err
	}

	target, err := e.loadUser(ctx, userID)
	if err != nil {
		return nil, e.fail(err)
	}

	venues, err := e.data.GetAllVenues(ctx)
	if err != nil {
		return nil, e.fail(fmt.Errorf("get venues: %w", err))
	}
	catalog := indexVenues(venues)

	targetProfile, err := e.profileFor(ctx, target, catalog)
	if err != nil {
		return nil, e.fail(err)
	}

	ids, err := e.data.GetAllUserIDs(ctx)
	if err != nil {
		return nil, e.fail(fmt.Errorf("get user ids: %w", err))
	}

	slots := make([]*UserMatch, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(e.config.Training.Workers))
	for i, id := range ids {
		if id == userID || target.HasBlocked(id) {
			continue
		}
		g.Go(func() error {
			match, err := e.matchUser(gctx, targetProfile, id, catalog)
			if err != nil {
				return err
			}
			slots[i] = match
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, e.fail(err)
	}

	matches := make([]UserMatch, 0, len(ids))
	for _, m := range slots {
		if m != nil {
			matches = append(matches, *m)
		}
	}
	sortUserMatches(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// matchUser scores one candidate. It returns nil for candidates that must
// not be suggested.
func (e *Engine) matchUser(ctx context.Context, target *UserProfile, candidateID string, catalog map[string]Venue) (*UserMatch, error) {
	candidate, err := e.data.GetUser(ctx, candidateID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", candidateID, err)
	}
	if candidate.HasBlocked(target.UserID) {
		return nil, nil
	}

	profile, err := e.profileFor(ctx, candidate, catalog)
	if err != nil {
		return nil, err
	}

	result, err := e.compat.Compare(target, profile)
	if errors.Is(err, ErrInvalidInput) {
		e.logger.Warn().Err(err).Str("candidate_id", candidateID).Msg("skipping candidate with invalid location")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &UserMatch{User: *candidate, Compatibility: result}, nil
}

// RecommendGroups ranks the user's candidate groups by preference overlap
// and size. Groups the user already belongs to are skipped.
func (e *Engine) RecommendGroups(ctx context.Context, userID string, limit int) ([]GroupMatch, error) {
	e.requestCount.Add(1)

	limit, err := e.resolveLimit(limit, e.config.Limits.DefaultGroups)
	if err != nil {
		return nil, err
	}

	profile, err := e.userProfile(ctx, userID)
	if err != nil {
		return nil, e.fail(err)
	}

	groups, err := e.data.GetUserGroups(ctx, userID)
	if err != nil {
		return nil, e.fail(fmt.Errorf("get groups: %w", err))
	}

	matches := make([]GroupMatch, 0, len(groups))
	for i := range groups {
		if groups[i].HasMember(userID) {
			continue
		}
		matches = append(matches, e.compat.ScoreGroup(profile, &groups[i]))
	}

	sortGroupMatches(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Compatibility scores two users against each other.
func (e *Engine) Compatibility(ctx context.Context, userA, userB string) (*CompatibilityResult, error) {
	e.requestCount.Add(1)

	venues, err := e.data.GetAllVenues(ctx)
	if err != nil {
		return nil, e.fail(fmt.Errorf("get venues: %w", err))
	}
	catalog := indexVenues(venues)

	profiles := make([]*UserProfile, 2)
	for i, id := range []string{userA, userB} {
		user, err := e.data.GetUser(ctx, id)
		if err != nil {
			return nil, e.fail(fmt.Errorf("get user %s: %w", id, err))
		}
		if profiles[i], err = e.profileFor(ctx, user, catalog); err != nil {
			return nil, e.fail(err)
		}
	}

	result, err := e.compat.Compare(profiles[0], profiles[1])
	if err != nil {
		return nil, e.fail(err)
	}
	return &result, nil
}

// TrainRanker fits a new ranker from the interaction log and publishes it.
// minSamples <= 0 selects the configured minimum. With fewer samples the
// active model is left untouched and the returned error wraps
// ErrInsufficientData; the result still reports the sample count.
// A concurrent call returns ErrTrainingInProgress immediately.
func (e *Engine) TrainRanker(ctx context.Context, minSamples int) (*TrainingResult, error) {
	if !e.trainMu.TryLock() {
		return nil, ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()

	if minSamples <= 0 {
		minSamples = e.config.Training.MinSamples
	}

	start := time.Now()
	e.setTraining(start)
	e.logger.Info().Int("min_samples", minSamples).Msg("starting ranker training")

	result, err := e.train(ctx, minSamples)
	result.Duration = time.Since(start)
	e.finishTraining(result, err)

	switch {
	case errors.Is(err, ErrInsufficientData):
		e.logger.Info().
			Int("samples", result.Samples).
			Int("min_samples", minSamples).
			Msg("skipping ranker training, keeping previous model")
	case err != nil:
		e.logger.Error().Err(err).Msg("ranker training failed")
	default:
		e.logger.Info().
			Int("samples", result.Samples).
			Int("positives", result.Positives).
			Int("users", result.Users).
			Int64("version", result.ModelVersion).
			Dur("duration", result.Duration).
			Msg("ranker training complete")
	}

	return result, err
}

// train builds the dataset and, if large enough, fits and publishes a model.
func (e *Engine) train(ctx context.Context, minSamples int) (*TrainingResult, error) {
	builder := &datasetBuilder{
		data:    e.data,
		fx:      e.scorer.fx,
		workers: workerCount(e.config.Training.Workers),
	}

	samples, users, err := builder.build(ctx)
	if err != nil {
		return &TrainingResult{}, fmt.Errorf("build dataset: %w", err)
	}

	x, y, positives := matrix(samples)
	result := &TrainingResult{Samples: len(samples), Positives: positives, Users: users}

	if len(samples) < minSamples {
		result.Skipped = true
		result.ModelVersion = e.registry.Version()
		return result, fmt.Errorf("%d samples, need %d: %w", len(samples), minSamples, ErrInsufficientData)
	}

	model, err := ranker.Train(ctx, x, y, e.config.Training.Forest)
	if err != nil {
		return result, fmt.Errorf("fit ranker: %w", err)
	}

	e.registry.Publish(model)
	result.ModelVersion = model.Version
	return result, nil
}

// setTraining marks a training run as started.
func (e *Engine) setTraining(start time.Time) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.IsTraining = true
	e.status.LastAttemptAt = start
}

// finishTraining records the outcome of a training run.
func (e *Engine) finishTraining(result *TrainingResult, err error) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.status.IsTraining = false
	e.status.LastError = ""
	e.status.LastSkippedSamples = 0

	switch {
	case errors.Is(err, ErrInsufficientData):
		e.status.LastSkippedSamples = result.Samples
	case err != nil:
		e.status.LastError = err.Error()
	default:
		e.status.SampleCount = result.Samples
		e.status.LastTrainedAt = time.Now()
	}
}

// Status returns the current training status.
func (e *Engine) Status() TrainingStatus {
	e.statusMu.RLock()
	status := e.status
	e.statusMu.RUnlock()

	if m := e.registry.Active(); m != nil {
		status.ModelLoaded = true
		status.ModelVersion = m.Version
		status.SampleCount = m.Samples
		if status.LastTrainedAt.IsZero() {
			status.LastTrainedAt = m.TrainedAt
		}
	}
	return status
}

// ActiveModel returns the model currently used for blending, or nil.
func (e *Engine) ActiveModel() *ranker.Model {
	return e.registry.Active()
}

// Counters returns the number of requests served and failed.
func (e *Engine) Counters() (requests, errs int64) {
	return e.requestCount.Load(), e.errorCount.Load()
}

// loadUser fetches a user and checks their location.
func (e *Engine) loadUser(ctx context.Context, userID string) (*User, error) {
	user, err := e.data.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	if err := user.Location.Validate(); err != nil {
		return nil, fmt.Errorf("user %s location: %w", userID, err)
	}
	return user, nil
}

// profileFor loads the interaction history and builds the profile.
func (e *Engine) profileFor(ctx context.Context, user *User, catalog map[string]Venue) (*UserProfile, error) {
	interactions, err := e.data.GetUserInteractions(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("get interactions for %s: %w", user.ID, err)
	}
	return BuildProfile(user, interactions, catalog), nil
}

// resolveLimit applies the default for non-positive limits and rejects
// limits above the configured maximum.
func (e *Engine) resolveLimit(limit, def int) (int, error) {
	if limit <= 0 {
		return def, nil
	}
	if limit > e.config.Limits.MaxLimit {
		return 0, fmt.Errorf("limit %d exceeds maximum %d: %w", limit, e.config.Limits.MaxLimit, ErrInvalidInput)
	}
	return limit, nil
}

// fail counts an error and returns it unchanged. Missing entities are
// caller errors and are not counted.
func (e *Engine) fail(err error) error {
	if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInvalidInput) {
		e.errorCount.Add(1)
	}
	return err
}
