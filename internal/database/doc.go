// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

/*
Package database is the DuckDB store behind the recommendation engine.

DB implements recommend.DataSource with sqlx over the duckdb-go driver. It
owns the schema (users, venues, interactions, bookings, social_groups),
applies versioned migrations at startup and exposes the write methods used
by ingestion endpoints and the demo seeder.

# Reads

Every DataSource method takes a context. Contexts without a deadline get a
30 second default. Missing users, venues and groups return errors wrapping
recommend.ErrNotFound; other failures are wrapped with the operation name.
Each query is timed into duckdb_query_duration_seconds.

# Resilience

ResilientSource decorates any DataSource with a sony/gobreaker circuit
breaker. The breaker opens after a run of consecutive store failures and
rejects calls with gobreaker.ErrOpenState until its timeout passes.
Not-found lookups and invalid input never trip it.

# Caching

CachedSource optionally keeps users, venues and the catalogue in an LRU
for a short TTL. Interactions, bookings and groups are always read through,
so profiles reflect every recorded interaction.

# Example

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
	    return err
	}
	defer db.Close()

	var source recommend.DataSource = db
	if cfg.Database.BreakerEnabled {
	    source = database.NewResilientSource(db, database.BreakerSettings{
	        MaxFailures: cfg.Database.BreakerMaxFailures,
	        Timeout:     cfg.Database.BreakerTimeout,
	        Interval:    cfg.Database.BreakerInterval,
	    }, logger)
	}
*/
package database
