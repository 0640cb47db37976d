// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/lunasocial/internal/config"
	"github.com/tomtom215/lunasocial/internal/database"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 9090, Timeout: 20 * time.Second},
		Database: config.DatabaseConfig{
			BreakerEnabled:     true,
			BreakerMaxFailures: 3,
			BreakerTimeout:     time.Second,
		},
		Storage:  config.StorageConfig{Enabled: true, InMemory: true, KeepVersions: 4},
		Training: config.TrainingConfig{Schedule: "@every 1h", OnStartup: true, Timeout: time.Minute, MinSamples: 25},
		Security: config.SecurityConfig{
			RateLimitReqs:   50,
			RateLimitWindow: 30 * time.Second,
			CORSOrigins:     []string{"https://app.lunasocial.example"},
		},
	}
}

func TestNewHTTPServer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		timeout   time.Duration
		train     time.Duration
		wantRead  time.Duration
		wantWrite time.Duration
	}{
		{"training dominates write timeout", 20 * time.Second, time.Minute, 20 * time.Second, 65 * time.Second},
		{"request dominates write timeout", 2 * time.Minute, time.Minute, 2 * time.Minute, 125 * time.Second},
		{"zero timeout falls back", 0, 0, 30 * time.Second, 35 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			cfg.Server.Timeout = tt.timeout
			cfg.Training.Timeout = tt.train

			srv := newHTTPServer(cfg, http.NotFoundHandler())
			if srv.Addr != "127.0.0.1:9090" {
				t.Errorf("Addr = %q", srv.Addr)
			}
			if srv.ReadTimeout != tt.wantRead {
				t.Errorf("ReadTimeout = %v, want %v", srv.ReadTimeout, tt.wantRead)
			}
			if srv.WriteTimeout != tt.wantWrite {
				t.Errorf("WriteTimeout = %v, want %v", srv.WriteTimeout, tt.wantWrite)
			}
			if srv.ReadHeaderTimeout == 0 {
				t.Error("ReadHeaderTimeout not set")
			}
		})
	}
}

func TestMiddlewareAndRankerConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig()

	mw := middlewareConfig(cfg)
	if mw.RateLimitRequests != 50 || mw.RateLimitWindow != 30*time.Second || mw.RateLimitDisabled {
		t.Errorf("rate limit config = %+v", mw)
	}
	if len(mw.CORSAllowedOrigins) != 1 || mw.CORSAllowedOrigins[0] != "https://app.lunasocial.example" {
		t.Errorf("CORS origins = %v", mw.CORSAllowedOrigins)
	}

	rc := rankerServiceConfig(cfg)
	if rc.Schedule != "@every 1h" || !rc.TrainOnStartup || rc.MinSamples != 25 || rc.KeepVersions != 4 || rc.Timeout != time.Minute {
		t.Errorf("ranker config = %+v", rc)
	}
}

func TestInitDataSource(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	source, breaker := initDataSource(cfg, nil, zerolog.Nop())
	if source == nil || breaker == nil {
		t.Fatal("breaker enabled: want a wrapped source and breaker state")
	}
	if breaker.State() != gobreaker.StateClosed {
		t.Errorf("initial breaker state = %v, want closed", breaker.State())
	}

	cfg.Database.CacheTTL = time.Minute
	source, _ = initDataSource(cfg, nil, zerolog.Nop())
	if _, ok := source.(*database.CachedSource); !ok {
		t.Errorf("cache enabled: source = %T, want *database.CachedSource", source)
	}

	cfg.Database.BreakerEnabled = false
	cfg.Database.CacheTTL = 0
	_, breaker = initDataSource(cfg, nil, zerolog.Nop())
	if breaker != nil {
		t.Errorf("breaker disabled: got %T, want nil", breaker)
	}
}

func TestInitModelStore(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	store, closeStore, err := initModelStore(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("initModelStore() error = %v", err)
	}
	defer closeStore()
	if store == nil {
		t.Error("in-memory store is nil")
	}

	cfg.Storage.Enabled = false
	store, closeDisabled, err := initModelStore(cfg, zerolog.Nop())
	if err != nil || store != nil {
		t.Errorf("disabled store = %v, %v; want nil, nil", store, err)
	}
	closeDisabled()
}
