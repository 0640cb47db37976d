// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package config

import (
	"time"

	"github.com/tomtom215/lunasocial/internal/recommend"
	"github.com/tomtom215/lunasocial/internal/recommend/ranker"
)

// Config holds all application configuration.
//
// Loading order (Koanf v2):
//  1. Defaults from defaultConfig()
//  2. Optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment variables listed in envMappings
//
// Config is immutable after Load and safe for concurrent reads.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Storage   StorageConfig   `koanf:"storage"`
	Recommend RecommendConfig `koanf:"recommend"`
	Training  TrainingConfig  `koanf:"training"`
	Logging   LoggingConfig   `koanf:"logging"`
	Security  SecurityConfig  `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging, production
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path         string `koanf:"path"`
	MaxMemory    string `koanf:"max_memory"`
	Threads      int    `koanf:"threads"`        // 0 = NumCPU
	SeedMockData bool   `koanf:"seed_mock_data"` // load the demo dataset when the database is empty

	// CheckpointInterval flushes the WAL periodically; zero disables it.
	CheckpointInterval time.Duration `koanf:"checkpoint_interval"`

	// CacheTTL keeps user and venue records in memory. Profiles are still
	// rebuilt from uncached interactions. Zero, the default, disables it.
	CacheTTL  time.Duration `koanf:"cache_ttl"`
	CacheSize int           `koanf:"cache_size"`

	// Circuit breaker around every read the engine makes.
	BreakerEnabled     bool          `koanf:"breaker_enabled"`
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
	BreakerInterval    time.Duration `koanf:"breaker_interval"`
}

// StorageConfig holds model snapshot settings.
type StorageConfig struct {
	// Enabled persists every published model and restores the newest one
	// at startup.
	Enabled bool `koanf:"enabled"`

	// Path is the Badger directory.
	Path string `koanf:"path"`

	// InMemory keeps snapshots in memory only (tests, ephemeral deployments).
	InMemory bool `koanf:"in_memory"`

	// KeepVersions is how many snapshots survive pruning.
	KeepVersions int `koanf:"keep_versions"`
}

// RecommendConfig holds scoring, compatibility and limit settings.
type RecommendConfig struct {
	// FeatureWeights are rating, distance, trending, category, capacity.
	FeatureWeights      []float64 `koanf:"feature_weights"`
	InterestBoost       float64   `koanf:"interest_boost"`
	CategoryBoostFactor float64   `koanf:"category_boost_factor"`
	DistanceDecayKm     float64   `koanf:"distance_decay_km"`

	// BlendWeight is the learned ranker's share of the final score.
	BlendWeight float64 `koanf:"blend_weight"`

	ExcludeBooked     bool    `koanf:"exclude_booked"`
	CandidateRadiusKm float64 `koanf:"candidate_radius_km"` // 0 = no radius filter

	InterestWeight        float64 `koanf:"interest_weight"`
	CategoryWeight        float64 `koanf:"category_weight"`
	LocationWeight        float64 `koanf:"location_weight"`
	LocationRadiusKm      float64 `koanf:"location_radius_km"`
	GroupPreferenceWeight float64 `koanf:"group_preference_weight"`
	GroupSizeWeight       float64 `koanf:"group_size_weight"`
	GroupSizeTarget       int     `koanf:"group_size_target"`

	DefaultVenueLimit int `koanf:"default_venue_limit"`
	DefaultUserLimit  int `koanf:"default_user_limit"`
	DefaultGroupLimit int `koanf:"default_group_limit"`
	MaxLimit          int `koanf:"max_limit"`
}

// TrainingConfig holds ranker training settings.
type TrainingConfig struct {
	// Enabled starts the scheduled training service.
	Enabled bool `koanf:"enabled"`

	// Schedule is a cron spec or descriptor such as "@every 6h".
	Schedule string `koanf:"schedule"`

	// OnStartup trains once as soon as the service starts.
	OnStartup bool `koanf:"on_startup"`

	// Timeout bounds a single training run.
	Timeout time.Duration `koanf:"timeout"`

	MinSamples      int   `koanf:"min_samples"`
	Workers         int   `koanf:"workers"` // 0 = GOMAXPROCS
	Trees           int   `koanf:"trees"`
	MaxDepth        int   `koanf:"max_depth"`
	MinSamplesSplit int   `koanf:"min_samples_split"`
	MinSamplesLeaf  int   `koanf:"min_samples_leaf"`
	Seed            int64 `koanf:"seed"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SecurityConfig holds HTTP hardening settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// Load reads defaults, the optional config file and the environment, then
// validates the result.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// EngineConfig converts the recommend and training sections into the
// engine's configuration.
func (c *Config) EngineConfig() *recommend.Config {
	r := c.Recommend
	out := recommend.DefaultConfig()

	copy(out.Scoring.FeatureWeights[:], r.FeatureWeights)
	out.Scoring.InterestBoost = r.InterestBoost
	out.Scoring.CategoryBoostFactor = r.CategoryBoostFactor
	out.Scoring.DistanceDecayKm = r.DistanceDecayKm
	out.Scoring.BlendWeight = r.BlendWeight

	out.Compatibility = recommend.CompatibilityConfig{
		InterestWeight:        r.InterestWeight,
		CategoryWeight:        r.CategoryWeight,
		LocationWeight:        r.LocationWeight,
		LocationRadiusKm:      r.LocationRadiusKm,
		GroupPreferenceWeight: r.GroupPreferenceWeight,
		GroupSizeWeight:       r.GroupSizeWeight,
		GroupSizeTarget:       r.GroupSizeTarget,
	}

	out.Limits = recommend.LimitsConfig{
		DefaultVenues: r.DefaultVenueLimit,
		DefaultUsers:  r.DefaultUserLimit,
		DefaultGroups: r.DefaultGroupLimit,
		MaxLimit:      r.MaxLimit,
	}
	out.ExcludeBooked = r.ExcludeBooked
	out.CandidateRadiusKm = r.CandidateRadiusKm

	out.Training = recommend.TrainingConfig{
		MinSamples: c.Training.MinSamples,
		Workers:    c.Training.Workers,
		Forest:     c.ForestConfig(),
	}
	return out
}

// ForestConfig returns the ranker ensemble settings.
func (c *Config) ForestConfig() ranker.ForestConfig {
	return ranker.ForestConfig{
		Trees:           c.Training.Trees,
		MaxDepth:        c.Training.MaxDepth,
		MinSamplesSplit: c.Training.MinSamplesSplit,
		MinSamplesLeaf:  c.Training.MinSamplesLeaf,
		Seed:            c.Training.Seed,
		Workers:         c.Training.Workers,
	}
}
