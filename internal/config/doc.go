// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

/*
Package config loads and validates service configuration with Koanf v2.

# Sources

Values are layered, later sources winning:

 1. Built-in defaults (defaultConfig). Scoring constants come from
    recommend.DefaultConfig so the engine and the service agree.
 2. A YAML file: CONFIG_PATH, else the first of DefaultConfigPaths found.
 3. Environment variables, mapped explicitly in envMappings.

# Environment Variables

Server:
  - HTTP_PORT, HTTP_HOST, HTTP_TIMEOUT, ENVIRONMENT

Database (DuckDB):
  - DUCKDB_PATH (default: /data/lunasocial.duckdb, ":memory:" allowed)
  - DUCKDB_MAX_MEMORY, DUCKDB_THREADS, DUCKDB_CHECKPOINT_INTERVAL, SEED_MOCK_DATA
  - DB_BREAKER_ENABLED, DB_BREAKER_FAILURES, DB_BREAKER_TIMEOUT, DB_BREAKER_INTERVAL

Model store (Badger):
  - MODEL_STORE_ENABLED, MODEL_STORE_PATH, MODEL_STORE_MEMORY, MODEL_STORE_KEEP

Recommendations:
  - RECOMMEND_WEIGHTS: five comma-separated heuristic weights
  - RECOMMEND_BLEND: learned ranker share of the final score (default: 0.5)
  - RECOMMEND_DECAY_KM, RECOMMEND_RADIUS_KM, RECOMMEND_NO_BOOKED, RECOMMEND_MAX_LIMIT

Training:
  - TRAINING_ENABLED, TRAINING_SCHEDULE (default: @every 6h), TRAINING_ON_STARTUP
  - TRAINING_TIMEOUT, TRAINING_MIN_SAMPLES (default: 50), TRAINING_WORKERS
  - TRAINING_TREES (default: 80), TRAINING_MAX_DEPTH (default: 6), TRAINING_SEED

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Security:
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT, CORS_ORIGINS

# Example

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	engine, err := recommend.NewEngine(cfg.EngineConfig(), data, registry, logger)
*/
package config
