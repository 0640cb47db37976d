// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lunasocial/internal/metrics"
)

// Checkpointer flushes the database write-ahead log.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// CheckpointService checkpoints DuckDB on a fixed interval so interactions
// written through the API reach the main database file between restarts.
// A failed checkpoint is logged and retried on the next tick; it never
// restarts the service.
type CheckpointService struct {
	db       Checkpointer
	interval time.Duration
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewCheckpointService creates the service. A non-positive interval means
// 15 minutes.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCheckpointService(db Checkpointer, interval time.Duration, logger zerolog.Logger) *CheckpointService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &CheckpointService{
		db:       db,
		interval: interval,
		timeout:  time.Minute,
		logger:   logger.With().Str("service", "checkpoint").Logger(),
	}
}

// Serve implements suture.Service. A final checkpoint runs on shutdown.
func (s *CheckpointService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.checkpoint(context.WithoutCancel(ctx))
			return ctx.Err()
		case <-ticker.C:
			s.checkpoint(ctx)
		}
	}
}

func (s *CheckpointService) checkpoint(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := s.db.Checkpoint(ctx)
	metrics.RecordDBQuery("checkpoint", time.Since(start), err, true)
	if err != nil {
		s.logger.Warn().Err(err).Msg("database checkpoint failed")
		return
	}
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("database checkpoint complete")
}

// String implements fmt.Stringer for Suture's logs.
func (s *CheckpointService) String() string {
	return "checkpoint-service"
}
