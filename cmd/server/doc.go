// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

/*
Package main is the entry point for the Luna Social recommendation server.

The server ranks venues for a user, suggests compatible people and groups,
and retrains a learned ranker from the interaction history stored in DuckDB.

# Application Architecture

Long-running components are supervised by Suture v4:

	RootSupervisor ("lunasocial")
	├── DataSupervisor ("data-layer")
	│   └── Checkpoint service (periodic DuckDB checkpoint)
	├── TrainingSupervisor ("training-layer")
	│   └── Ranker service (cron retraining, snapshot restore)
	└── APISupervisor ("api-layer")
	    └── HTTP server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Database: DuckDB, optionally seeded with the demo dataset
 4. Data source: gobreaker circuit breaker around engine reads
 5. Model store: Badger snapshots of published rankers
 6. Engine: scoring, compatibility and training
 7. Supervisor tree and services
 8. HTTP server

# Configuration

Common environment variables:

	HTTP_PORT=8080
	DUCKDB_PATH=/data/lunasocial.duckdb
	SEED_MOCK_DATA=false          # load the demo dataset into an empty database
	MODEL_STORE_PATH=/data/models
	TRAINING_SCHEDULE="@every 6h"
	TRAINING_ON_STARTUP=false
	LOG_LEVEL=info                # trace, debug, info, warn, error
	LOG_FORMAT=json               # json or console

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests, the checkpoint service flushes one last time and the
database and model store are closed after the tree stops.
*/
package main
