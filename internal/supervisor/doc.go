// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

/*
Package supervisor runs the recommendation server's long-lived services
under a suture v4 supervisor tree.

# Overview

Services are grouped into three layers so a crash loop in one layer backs
off without touching the others:

	lunasocial
	├── data-layer
	│   └── CheckpointService  (periodic DuckDB checkpoint)
	├── training-layer
	│   └── RankerService      (if TRAINING_ENABLED)
	└── api-layer
	    └── HTTPServerService

A failing training run never affects request serving. The engine keeps
answering with the last published model, or with heuristic scores when no
model exists yet.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"),
	    supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewCheckpointService(db, cfg.Database.CheckpointInterval, logger))
	tree.AddTrainingService(rankerSvc)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh

# Configuration

TreeConfig maps directly onto suture.Spec. Zero fields take suture's
defaults: threshold 5, decay 30s, backoff 15s, shutdown timeout 10s.

# Failure Handling

A service that returns a non-nil error is restarted. Failures decay
exponentially over FailureDecay seconds; once the count passes
FailureThreshold the supervisor waits FailureBackoff before the next
restart. Returning ctx.Err() after cancellation is a clean stop.

DuckDB itself is not supervised. It is an embedded library whose failures
surface as query errors, which the resilient data source turns into
circuit breaker state instead.

# Debugging Shutdown

UnstoppedServiceReport lists services that ignored cancellation past the
shutdown timeout.
*/
package supervisor
