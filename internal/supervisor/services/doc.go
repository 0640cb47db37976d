// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

/*
Package services provides Suture service wrappers for the long-running parts
of the recommendation server.

  - HTTPServerService: the API server, with graceful shutdown on cancel
  - RankerService: cron-scheduled ranker training, snapshot restore on start
    and snapshot save/prune after every published model
  - CheckpointService: periodic DuckDB CHECKPOINT plus one on shutdown

Every service implements suture.Service (Serve(ctx) error) and
fmt.Stringer so the supervisor can log it by name. A service returns
ctx.Err() on shutdown and a wrapped error on failure, which Suture answers
with a restart under its backoff policy.

# Example

	rankerSvc := services.NewRankerService(engine, registry, store,
	    services.RankerServiceConfig{
	        Schedule:       cfg.Training.Schedule,
	        TrainOnStartup: cfg.Training.OnStartup,
	        Timeout:        cfg.Training.Timeout,
	    }, logger)
	tree.AddTrainingService(rankerSvc)

	httpSvc := services.NewHTTPServerService(server, 10*time.Second, logger)
	tree.AddAPIService(httpSvc)
*/
package services
