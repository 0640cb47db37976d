// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Layer names as they appear in supervisor events.
const (
	rootName   = "lunasocial"
	dataLayer  = "data-layer"
	trainLayer = "training-layer"
	apiLayer   = "api-layer"
)

// TreeConfig tunes restart behavior. Zero fields take the values from
// DefaultTreeConfig.
type TreeConfig struct {
	// FailureThreshold is how many decayed failures trigger a backoff.
	FailureThreshold float64
	// FailureDecay is the failure half-life in seconds.
	FailureDecay float64
	// FailureBackoff is the pause once the threshold is crossed.
	FailureBackoff time.Duration
	// ShutdownTimeout bounds how long each service gets to stop.
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig mirrors suture's own defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func (c *TreeConfig) applyDefaults() {
	def := DefaultTreeConfig()
	fill := func(v *float64, d float64) {
		if *v == 0 {
			*v = d
		}
	}
	fillDur := func(v *time.Duration, d time.Duration) {
		if *v == 0 {
			*v = d
		}
	}
	fill(&c.FailureThreshold, def.FailureThreshold)
	fill(&c.FailureDecay, def.FailureDecay)
	fillDur(&c.FailureBackoff, def.FailureBackoff)
	fillDur(&c.ShutdownTimeout, def.ShutdownTimeout)
}

func (c TreeConfig) spec(hook suture.EventHook) suture.Spec {
	return suture.Spec{
		EventHook:        hook,
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// SupervisorTree is the process supervision hierarchy:
//
//	lunasocial
//	├── data-layer      maintenance against DuckDB and the model store
//	├── training-layer  scheduled ranker training
//	└── api-layer       HTTP server
//
// A training crash loop backs off on its own without taking the API down;
// requests keep being served with the last published model.
type SupervisorTree struct {
	root     *suture.Supervisor
	data     *suture.Supervisor
	training *suture.Supervisor
	api      *suture.Supervisor
	config   TreeConfig
}

// NewSupervisorTree builds the root and its three layers. Events from every
// level go to logger through sutureslog.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	config.applyDefaults()

	events := &sutureslog.Handler{Logger: logger}
	t := &SupervisorTree{
		root:   suture.New(rootName, config.spec(events.MustHook())),
		config: config,
	}

	// Layers pick up the root's hook when added, so theirs stays nil.
	for name, sup := range map[string]**suture.Supervisor{
		dataLayer:  &t.data,
		trainLayer: &t.training,
		apiLayer:   &t.api,
	} {
		*sup = suture.New(name, config.spec(nil))
	}
	t.root.Add(t.data)
	t.root.Add(t.training)
	t.root.Add(t.api)

	return t, nil
}

// Root exposes the top-level supervisor.
func (t *SupervisorTree) Root() *suture.Supervisor { return t.root }

// AddDataService supervises svc in the data layer.
func (t *SupervisorTree) AddDataService(svc suture.Service) suture.ServiceToken {
	return t.data.Add(svc)
}

// AddTrainingService supervises svc in the training layer.
func (t *SupervisorTree) AddTrainingService(svc suture.Service) suture.ServiceToken {
	return t.training.Add(svc)
}

// AddAPIService supervises svc in the api layer.
func (t *SupervisorTree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.api.Add(svc)
}

// RemoveTrainingService stops the training service behind token.
func (t *SupervisorTree) RemoveTrainingService(token suture.ServiceToken) error {
	return t.training.Remove(token)
}

// ServeBackground starts the tree. The channel yields one value once the
// tree has stopped and is not closed afterwards.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that outlived ShutdownTimeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
