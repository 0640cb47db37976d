// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lunasocial/internal/api"
	"github.com/tomtom215/lunasocial/internal/config"
	"github.com/tomtom215/lunasocial/internal/database"
	"github.com/tomtom215/lunasocial/internal/logging"
	"github.com/tomtom215/lunasocial/internal/recommend"
	"github.com/tomtom215/lunasocial/internal/recommend/ranker"
	"github.com/tomtom215/lunasocial/internal/recommend/storage"
	"github.com/tomtom215/lunasocial/internal/supervisor"
	"github.com/tomtom215/lunasocial/internal/supervisor/services"
)

// shutdownTimeout bounds the HTTP drain on SIGTERM.
const shutdownTimeout = 10 * time.Second

// components holds everything initServices wires into the tree.
type components struct {
	cfg      *config.Config
	db       *database.DB
	engine   *recommend.Engine
	registry *ranker.Registry
	store    *storage.ModelStore // nil when snapshots are disabled
	breaker  api.BreakerState    // nil when the breaker is disabled
}

// initDatabase opens DuckDB and loads the demo dataset when configured.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*database.DB, error) {
	db, err := database.New(&cfg.Database, logging.WithComponent("database"))
	if err != nil {
		return nil, err
	}

	if !cfg.Database.SeedMockData {
		return db, nil
	}

	logger.Info().Msg("Mock data seeding enabled (SEED_MOCK_DATA=true)")
	summary, err := db.SeedMockData(ctx)
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("Error closing database")
		}
		return nil, fmt.Errorf("seed mock data: %w", err)
	}
	logger.Info().
		Int("users", summary.Users).
		Int("venues", summary.Venues).
		Int("interactions", summary.Interactions).
		Msg("Mock data ready")
	return db, nil
}

// initModelStore opens the Badger snapshot store. With storage disabled it
// returns a nil store and a no-op closer.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initModelStore(cfg *config.Config, logger zerolog.Logger) (*storage.ModelStore, func(), error) {
	if !cfg.Storage.Enabled {
		logger.Info().Msg("Model snapshots disabled; rankers are lost on restart")
		return nil, func() {}, nil
	}

	bdb, err := storage.OpenBadger(cfg.Storage.Path, cfg.Storage.InMemory)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if err := bdb.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing model store")
		}
	}

	logger.Info().
		Str("path", cfg.Storage.Path).
		Bool("in_memory", cfg.Storage.InMemory).
		Int("keep_versions", cfg.Storage.KeepVersions).
		Msg("Model store opened")
	return storage.NewModelStore(bdb, logging.WithComponent("model_store")), closer, nil
}

// initDataSource layers the circuit breaker and the read cache over the
// database. Cache hits never reach the breaker. The returned BreakerState
// is nil when the breaker is disabled.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initDataSource(cfg *config.Config, db recommend.DataSource, logger zerolog.Logger) (recommend.DataSource, api.BreakerState) {
	source := db
	var breaker api.BreakerState

	if cfg.Database.BreakerEnabled {
		rs := database.NewResilientSource(db, database.BreakerSettings{
			MaxFailures: cfg.Database.BreakerMaxFailures,
			Timeout:     cfg.Database.BreakerTimeout,
			Interval:    cfg.Database.BreakerInterval,
		}, logger)
		source, breaker = rs, rs
	} else {
		logger.Info().Msg("Data source circuit breaker disabled")
	}

	if cfg.Database.CacheTTL > 0 {
		source = database.NewCachedSource(source, database.CacheSettings{
			TTL:  cfg.Database.CacheTTL,
			Size: cfg.Database.CacheSize,
		})
		logger.Info().Dur("ttl", cfg.Database.CacheTTL).Int("size", cfg.Database.CacheSize).Msg("Data source cache enabled")
	}
	return source, breaker
}

// initServices adds every long-running service to the tree. The ranker
// service is always built because the API uses it for manual training;
// it is only scheduled when training is enabled. Snapshots are restored
// before the API exists so a manual training run cannot publish a version
// that is already stored.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initServices(ctx context.Context, tree *supervisor.SupervisorTree, c *components, logger zerolog.Logger) {
	cfg := c.cfg

	if cfg.Database.CheckpointInterval > 0 {
		tree.AddDataService(services.NewCheckpointService(c.db, cfg.Database.CheckpointInterval, logging.WithComponent("checkpoint")))
	}

	var snapshots services.ModelSnapshots
	if c.store != nil {
		snapshots = c.store
	}
	rankerSvc := services.NewRankerService(c.engine, c.registry, snapshots, rankerServiceConfig(cfg), logging.WithComponent("ranker"))

	rankerSvc.Restore(ctx)
	if cfg.Training.Enabled {
		tree.AddTrainingService(rankerSvc)
	} else {
		logger.Info().Msg("Scheduled training disabled (TRAINING_ENABLED=false)")
	}

	handler := api.NewHandler(api.HandlerOptions{
		Engine:         c.engine,
		Trainer:        rankerSvc,
		Store:          c.db,
		Breaker:        c.breaker,
		RequestTimeout: cfg.Server.Timeout,
		TrainTimeout:   cfg.Training.Timeout,
		Version:        version,
	})
	server := newHTTPServer(cfg, api.NewRouter(handler, api.NewChiMiddleware(middlewareConfig(cfg))))

	tree.AddAPIService(services.NewHTTPServerService(server, shutdownTimeout, logging.WithComponent("http")))
	logger.Info().Str("addr", server.Addr).Msg("HTTP server configured")
}

func rankerServiceConfig(cfg *config.Config) services.RankerServiceConfig {
	return services.RankerServiceConfig{
		Schedule:       cfg.Training.Schedule,
		TrainOnStartup: cfg.Training.OnStartup,
		Timeout:        cfg.Training.Timeout,
		MinSamples:     cfg.Training.MinSamples,
		KeepVersions:   cfg.Storage.KeepVersions,
	}
}

func middlewareConfig(cfg *config.Config) *api.ChiMiddlewareConfig {
	return &api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		CORSMaxAge:         300,
		RateLimitRequests:  cfg.Security.RateLimitReqs,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		RateLimitDisabled:  cfg.Security.RateLimitDisabled,
	}
}

// newHTTPServer applies the configured request timeout to reads. The write
// timeout must outlast both the request deadline and a manual training run.
func newHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	timeout := cfg.Server.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	write := max(timeout, cfg.Training.Timeout) + 5*time.Second
	return &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      write,
		IdleTimeout:       2 * time.Minute,
	}
}
