// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/lunasocial/internal/config"
	"github.com/tomtom215/lunasocial/internal/logging"
	"github.com/tomtom215/lunasocial/internal/recommend"
	"github.com/tomtom215/lunasocial/internal/recommend/ranker"
	"github.com/tomtom215/lunasocial/internal/supervisor"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup always executes.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logger := logging.Logger()

	logger.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Bool("training_enabled", cfg.Training.Enabled).
		Msg("Starting Luna Social")

	if cfg.ShouldWarnAboutCORS() {
		logger.Warn().Msg("CORS allows any origin in production; set CORS_ORIGINS")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := initDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize database")
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing database")
		}
	}()

	store, closeStore, err := initModelStore(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open model store")
		return 1
	}
	defer closeStore()

	source, breaker := initDataSource(cfg, db, logger)
	registry := ranker.NewRegistry()

	engine, err := recommend.NewEngine(cfg.EngineConfig(), source, registry, logging.WithComponent("recommend"))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create recommendation engine")
		return 1
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create supervisor tree")
		return 1
	}

	initServices(ctx, tree, &components{
		cfg:      cfg,
		db:       db,
		engine:   engine,
		registry: registry,
		store:    store,
		breaker:  breaker,
	}, logger)

	logger.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	// The channel carries exactly one result once the tree has stopped.
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logger.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logger.Info().Msg("Application stopped gracefully")
	return 0
}
