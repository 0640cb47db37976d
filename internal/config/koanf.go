// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/lunasocial/internal/recommend"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/lunasocial/config.yaml",
	"/etc/lunasocial/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig mirrors recommend.DefaultConfig for the engine sections so
// there is one source of truth for scoring constants.
func defaultConfig() *Config {
	eng := recommend.DefaultConfig()
	forest := eng.Training.Forest

	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:               "/data/lunasocial.duckdb",
			MaxMemory:          "1GB",
			Threads:            0,
			SeedMockData:       false,
			CheckpointInterval: 15 * time.Minute,
			CacheTTL:           0,
			CacheSize:          10000,
			BreakerEnabled:     true,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
			BreakerInterval:    time.Minute,
		},
		Storage: StorageConfig{
			Enabled:      true,
			Path:         "/data/models",
			InMemory:     false,
			KeepVersions: 5,
		},
		Recommend: RecommendConfig{
			FeatureWeights:        eng.Scoring.FeatureWeights.Slice(),
			InterestBoost:         eng.Scoring.InterestBoost,
			CategoryBoostFactor:   eng.Scoring.CategoryBoostFactor,
			DistanceDecayKm:       eng.Scoring.DistanceDecayKm,
			BlendWeight:           eng.Scoring.BlendWeight,
			ExcludeBooked:         eng.ExcludeBooked,
			CandidateRadiusKm:     eng.CandidateRadiusKm,
			InterestWeight:        eng.Compatibility.InterestWeight,
			CategoryWeight:        eng.Compatibility.CategoryWeight,
			LocationWeight:        eng.Compatibility.LocationWeight,
			LocationRadiusKm:      eng.Compatibility.LocationRadiusKm,
			GroupPreferenceWeight: eng.Compatibility.GroupPreferenceWeight,
			GroupSizeWeight:       eng.Compatibility.GroupSizeWeight,
			GroupSizeTarget:       eng.Compatibility.GroupSizeTarget,
			DefaultVenueLimit:     eng.Limits.DefaultVenues,
			DefaultUserLimit:      eng.Limits.DefaultUsers,
			DefaultGroupLimit:     eng.Limits.DefaultGroups,
			MaxLimit:              eng.Limits.MaxLimit,
		},
		Training: TrainingConfig{
			Enabled:         true,
			Schedule:        "@every 6h",
			OnStartup:       false,
			Timeout:         10 * time.Minute,
			MinSamples:      eng.Training.MinSamples,
			Workers:         0,
			Trees:           forest.Trees,
			MaxDepth:        forest.MaxDepth,
			MinSamplesSplit: forest.MinSamplesSplit,
			MinSamplesLeaf:  forest.MinSamplesLeaf,
			Seed:            forest.Seed,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
	}
}

// LoadWithKoanf loads configuration in three layers: defaults, config file,
// environment. Later layers win.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"recommend.feature_weights",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}

		parts := strings.Split(raw, ",")
		items := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}

		var value any = items
		if path == "recommend.feature_weights" {
			weights := make([]float64, len(items))
			for i, s := range items {
				w, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return fmt.Errorf("%s[%d]: %w", path, i, err)
				}
				weights[i] = w
			}
			value = weights
		}

		if err := k.Set(path, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings lists every environment variable the service reads. Anything
// not listed is ignored.
var envMappings = map[string]string{
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	"duckdb_path":                "database.path",
	"duckdb_max_memory":          "database.max_memory",
	"duckdb_threads":             "database.threads",
	"seed_mock_data":             "database.seed_mock_data",
	"duckdb_checkpoint_interval": "database.checkpoint_interval",
	"data_cache_ttl":             "database.cache_ttl",
	"data_cache_size":            "database.cache_size",
	"db_breaker_enabled":         "database.breaker_enabled",
	"db_breaker_failures":        "database.breaker_max_failures",
	"db_breaker_timeout":         "database.breaker_timeout",
	"db_breaker_interval":        "database.breaker_interval",
	"model_store_enabled":        "storage.enabled",
	"model_store_path":           "storage.path",
	"model_store_memory":         "storage.in_memory",
	"model_store_keep":           "storage.keep_versions",
	"recommend_weights":          "recommend.feature_weights",
	"recommend_blend":            "recommend.blend_weight",
	"recommend_decay_km":         "recommend.distance_decay_km",
	"recommend_radius_km":        "recommend.candidate_radius_km",
	"recommend_no_booked":        "recommend.exclude_booked",
	"recommend_max_limit":        "recommend.max_limit",
	"training_enabled":           "training.enabled",
	"training_schedule":          "training.schedule",
	"training_on_startup":        "training.on_startup",
	"training_timeout":           "training.timeout",
	"training_min_samples":       "training.min_samples",
	"training_workers":           "training.workers",
	"training_trees":             "training.trees",
	"training_max_depth":         "training.max_depth",
	"training_seed":              "training.seed",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
}

// envTransformFunc maps HTTP_PORT to server.port and so on. Unmapped
// variables return "" so koanf skips them.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
