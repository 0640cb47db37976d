// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package api

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/lunasocial/internal/database"
	"github.com/tomtom215/lunasocial/internal/recommend"
)

// Recommender is the engine surface the handlers call.
type Recommender interface {
	RecommendVenues(ctx context.Context, userID string, limit int, withReasoning bool) (*recommend.VenueRecommendations, error)
	RecommendUsers(ctx context.Context, userID string, limit int) ([]recommend.UserMatch, error)
	RecommendGroups(ctx context.Context, userID string, limit int) ([]recommend.GroupMatch, error)
	Compatibility(ctx context.Context, userA, userB string) (*recommend.CompatibilityResult, error)
	BuildUserProfile(ctx context.Context, userID string) (*recommend.UserProfile, error)
	Status() recommend.TrainingStatus
	Counters() (requests, errs int64)
}

// Trainer runs one training pass on demand. RankerService implements it so
// manual runs get the same metrics and snapshot persistence as scheduled ones.
type Trainer interface {
	RunOnce(ctx context.Context) (*recommend.TrainingResult, error)
}

// Store is the write and health surface of the database.
type Store interface {
	InsertInteraction(ctx context.Context, in *recommend.Interaction) (string, error)
	Ping(ctx context.Context) error
	GetRecordCounts(ctx context.Context) (*database.RecordCounts, error)
}

// BreakerState reports the data source circuit breaker.
type BreakerState interface {
	State() gobreaker.State
}

// Handler holds the dependencies shared by all endpoints.
type Handler struct {
	engine  Recommender
	trainer Trainer
	store   Store
	breaker BreakerState

	requestTimeout time.Duration
	trainTimeout   time.Duration
	startTime      time.Time
	version        string
}

// HandlerOptions configures NewHandler. Trainer and Breaker are optional:
// without a trainer POST /ranker/train answers 503, without a breaker the
// health report omits breaker state.
type HandlerOptions struct {
	Engine  Recommender
	Trainer Trainer
	Store   Store
	Breaker BreakerState

	// RequestTimeout bounds each recommendation call. Default 10s.
	RequestTimeout time.Duration

	// TrainTimeout bounds a manual training run. Default 10m.
	TrainTimeout time.Duration

	Version string
}

// NewHandler creates the endpoint handlers.
func NewHandler(opts HandlerOptions) *Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.TrainTimeout <= 0 {
		opts.TrainTimeout = 10 * time.Minute
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Handler{
		engine:         opts.Engine,
		trainer:        opts.Trainer,
		store:          opts.Store,
		breaker:        opts.Breaker,
		requestTimeout: opts.RequestTimeout,
		trainTimeout:   opts.TrainTimeout,
		startTime:      time.Now(),
		version:        opts.Version,
	}
}
