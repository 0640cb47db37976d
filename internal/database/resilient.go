// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/lunasocial/internal/metrics"
	"github.com/tomtom215/lunasocial/internal/recommend"
)

// BreakerName labels the data source breaker in metrics and logs.
const BreakerName = "duckdb-datasource"

// BreakerSettings configures a ResilientSource.
type BreakerSettings struct {
	// MaxFailures consecutive failures open the circuit.
	MaxFailures uint32

	// Timeout is how long the circuit stays open before a probe.
	Timeout time.Duration

	// Interval clears the closed-state counts; zero never clears.
	Interval time.Duration
}

// ResilientSource wraps a recommend.DataSource with a circuit breaker.
// Missing entities, invalid input and caller cancellation do not count
// as failures.
//
// The breaker uses real time for its interval and timeout. Tests drive
// transitions through MaxFailures and a short Timeout.
type ResilientSource struct {
	next   recommend.DataSource
	cb     *gobreaker.CircuitBreaker[any]
	name   string
	logger zerolog.Logger
}

var _ recommend.DataSource = (*ResilientSource)(nil)

// NewResilientSource wraps next.
func NewResilientSource(next recommend.DataSource, settings BreakerSettings, logger zerolog.Logger) *ResilientSource {
	if settings.MaxFailures == 0 {
		settings.MaxFailures = 5
	}
	r := &ResilientSource{
		next:   next,
		name:   BreakerName,
		logger: logger.With().Str("component", "circuit_breaker").Str("breaker", BreakerName).Logger(),
	}

	metrics.CircuitBreakerState.WithLabelValues(r.name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(r.name).Set(0)

	r.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        r.name,
		MaxRequests: 1,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= settings.MaxFailures
			if trip {
				r.logger.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("Opening circuit")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state transition")
			metrics.RecordBreakerTransition(name, from, to)
		},
		IsSuccessful: isSuccessful,
	})
	return r
}

// isSuccessful reports errors that say nothing about the store's health.
func isSuccessful(err error) bool {
	return err == nil ||
		errors.Is(err, recommend.ErrNotFound) ||
		errors.Is(err, recommend.ErrInvalidInput) ||
		errors.Is(err, context.Canceled)
}

// State returns the current breaker state.
func (r *ResilientSource) State() gobreaker.State {
	return r.cb.State()
}

// execute runs fn through the breaker and records the outcome.
func execute[T any](r *ResilientSource, fn func() (T, error)) (T, error) {
	var zero T
	result, err := r.cb.Execute(func() (any, error) {
		return fn()
	})

	switch {
	case isSuccessful(err):
		metrics.RecordBreakerResult(r.name, 0, nil)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordBreakerResult(r.name, 0, err)
		r.logger.Debug().Err(err).Msg("Request rejected")
		return zero, fmt.Errorf("data source unavailable: %w", err)
	default:
		metrics.RecordBreakerResult(r.name, r.cb.Counts().ConsecutiveFailures, err)
	}
	if err != nil {
		return zero, err
	}

	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// GetUser implements recommend.DataSource.
func (r *ResilientSource) GetUser(ctx context.Context, userID string) (*recommend.User, error) {
	return execute(r, func() (*recommend.User, error) { return r.next.GetUser(ctx, userID) })
}

// GetVenue implements recommend.DataSource.
func (r *ResilientSource) GetVenue(ctx context.Context, venueID string) (*recommend.Venue, error) {
	return execute(r, func() (*recommend.Venue, error) { return r.next.GetVenue(ctx, venueID) })
}

// GetAllVenues implements recommend.DataSource.
func (r *ResilientSource) GetAllVenues(ctx context.Context) ([]recommend.Venue, error) {
	return execute(r, func() ([]recommend.Venue, error) { return r.next.GetAllVenues(ctx) })
}

// GetUserInteractions implements recommend.DataSource.
func (r *ResilientSource) GetUserInteractions(ctx context.Context, userID string) ([]recommend.Interaction, error) {
	return execute(r, func() ([]recommend.Interaction, error) { return r.next.GetUserInteractions(ctx, userID) })
}

// GetAllUserIDs implements recommend.DataSource.
func (r *ResilientSource) GetAllUserIDs(ctx context.Context) ([]string, error) {
	return execute(r, func() ([]string, error) { return r.next.GetAllUserIDs(ctx) })
}

// GetUserBookings implements recommend.DataSource.
func (r *ResilientSource) GetUserBookings(ctx context.Context, userID string) ([]recommend.Booking, error) {
	return execute(r, func() ([]recommend.Booking, error) { return r.next.GetUserBookings(ctx, userID) })
}

// GetUserGroups implements recommend.DataSource.
func (r *ResilientSource) GetUserGroups(ctx context.Context, userID string) ([]recommend.Group, error) {
	return execute(r, func() ([]recommend.Group, error) { return r.next.GetUserGroups(ctx, userID) })
}
