// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tomtom215/lunasocial/internal/metrics"
	"github.com/tomtom215/lunasocial/internal/recommend"
	"github.com/tomtom215/lunasocial/internal/recommend/ranker"
	"github.com/tomtom215/lunasocial/internal/recommend/storage"
)

// snapshotTimeout bounds each save or prune after a publish.
const snapshotTimeout = 30 * time.Second

// RankerEngine is the part of recommend.Engine the service drives.
type RankerEngine interface {
	TrainRanker(ctx context.Context, minSamples int) (*recommend.TrainingResult, error)
	ActiveModel() *ranker.Model
}

// ModelSnapshots persists published models. *storage.ModelStore satisfies it.
type ModelSnapshots interface {
	Save(ctx context.Context, m *ranker.Model) (*storage.ModelMetadata, error)
	LoadLatest(ctx context.Context) (*ranker.Model, *storage.ModelMetadata, error)
	Prune(ctx context.Context, keep int) (int, error)
	MaxVersion(ctx context.Context) (int64, error)
}

// RankerServiceConfig holds configuration for the ranker service.
type RankerServiceConfig struct {
	// Schedule is a standard cron expression or descriptor ("@every 6h").
	Schedule string

	// TrainOnStartup runs one training cycle before the first tick.
	TrainOnStartup bool

	// Timeout bounds one training run.
	Timeout time.Duration

	// MinSamples is passed to TrainRanker; zero uses the engine default.
	MinSamples int

	// KeepVersions is how many snapshots survive pruning.
	KeepVersions int
}

// RankerService retrains the learned ranker on a cron schedule under Suture
// supervision. It restores the newest snapshot on start and persists every
// model it publishes. The store is optional.
type RankerService struct {
	engine   RankerEngine
	registry *ranker.Registry
	store    ModelSnapshots
	config   RankerServiceConfig
	logger   zerolog.Logger
	name     string
}

// NewRankerService creates the ranker service. store may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRankerService(engine RankerEngine, registry *ranker.Registry, store ModelSnapshots, cfg RankerServiceConfig, logger zerolog.Logger) *RankerService {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 6h"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	if cfg.KeepVersions <= 0 {
		cfg.KeepVersions = 5
	}
	return &RankerService{
		engine:   engine,
		registry: registry,
		store:    store,
		config:   cfg,
		logger:   logger.With().Str("service", "ranker").Logger(),
		name:     "ranker-service",
	}
}

// Serve implements suture.Service.
func (s *RankerService) Serve(ctx context.Context) error {
	s.logger.Info().
		Str("schedule", s.config.Schedule).
		Bool("train_on_startup", s.config.TrainOnStartup).
		Msg("ranker service starting")

	s.Restore(ctx)

	logger := cronLogger{s.logger}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(s.config.Schedule, func() { s.runScheduled(ctx) }); err != nil {
		// A bad schedule will not fix itself on restart.
		return fmt.Errorf("invalid training schedule %q: %w", s.config.Schedule, err)
	}

	if s.config.TrainOnStartup {
		s.runScheduled(ctx)
	}

	c.Start()
	<-ctx.Done()

	s.logger.Info().Msg("ranker service shutting down")
	<-c.Stop().Done()
	return ctx.Err()
}

// Restore reserves every stored version number in the registry, then
// activates the newest persisted model when none is active yet. The
// reservation happens even when the snapshot cannot be loaded, so the next
// published model never reuses a stored key.
func (s *RankerService) Restore(ctx context.Context) {
	if s.store == nil || s.registry == nil {
		return
	}

	highest, err := s.store.MaxVersion(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read stored ranker versions")
	} else {
		s.registry.Reserve(highest)
	}

	if s.registry.Active() != nil {
		return
	}

	m, meta, err := s.store.LoadLatest(ctx)
	switch {
	case errors.Is(err, storage.ErrNoModel):
		s.logger.Info().Msg("no ranker snapshot found, using heuristic scoring until first training")
		return
	case err != nil:
		metrics.RecordSnapshot("load", err)
		s.logger.Warn().Err(err).Int64("next_version", highest+1).Msg("failed to restore ranker snapshot")
		return
	}
	metrics.RecordSnapshot("load", nil)

	s.registry.Restore(m)
	metrics.SetModelVersion(m.Version)
	s.logger.Info().
		Int64("version", meta.Version).
		Int("samples", meta.Samples).
		Time("trained_at", meta.TrainedAt).
		Msg("restored ranker snapshot")
}

func (s *RankerService) runScheduled(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.RunOnce(ctx); err != nil &&
		!errors.Is(err, recommend.ErrInsufficientData) &&
		!errors.Is(err, recommend.ErrTrainingInProgress) {
		s.logger.Warn().Err(err).Msg("scheduled training failed (will retry on schedule)")
	}
}

// RunOnce trains, records the outcome and persists a published model. The
// result is non-nil whenever training reached dataset assembly, including
// the skipped case.
func (s *RankerService) RunOnce(ctx context.Context) (*recommend.TrainingResult, error) {
	trainCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	result, err := s.engine.TrainRanker(trainCtx, s.config.MinSamples)
	switch {
	case errors.Is(err, recommend.ErrTrainingInProgress):
		metrics.RecordTraining(metrics.TrainingBusy, 0, -1)
		return nil, err
	case errors.Is(err, recommend.ErrInsufficientData):
		metrics.RecordTraining(metrics.TrainingSkipped, time.Since(start), result.Samples)
		return result, err
	case err != nil:
		samples := -1
		if result != nil && result.Samples > 0 {
			samples = result.Samples
		}
		metrics.RecordTraining(metrics.TrainingFailed, time.Since(start), samples)
		return result, err
	}

	metrics.RecordTraining(metrics.TrainingPublished, time.Since(start), result.Samples)
	metrics.SetModelVersion(result.ModelVersion)
	s.persist(context.WithoutCancel(ctx))
	return result, nil
}

// persist saves the active model and prunes old snapshots. Failures are
// logged; the in-memory model stays active either way.
func (s *RankerService) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	m := s.engine.ActiveModel()
	if m == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	meta, err := s.store.Save(ctx, m)
	metrics.RecordSnapshot("save", err)
	if err != nil {
		s.logger.Error().Err(err).Int64("version", m.Version).Msg("failed to persist ranker snapshot")
		return
	}
	s.logger.Info().Int64("version", meta.Version).Int64("bytes", meta.SizeBytes).Msg("ranker snapshot saved")

	removed, err := s.store.Prune(ctx, s.config.KeepVersions)
	metrics.RecordSnapshot("prune", err)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to prune ranker snapshots")
		return
	}
	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Msg("pruned ranker snapshots")
	}
}

// String returns the service name for logging.
func (s *RankerService) String() string {
	return s.name
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
