// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

// Package ranker implements the learned venue ranker: a standard scaler and a
// bagged regression-tree ensemble, plus the registry that publishes the
// active model to concurrent readers.
package ranker

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ForestConfig controls random forest training.
type ForestConfig struct {
	// Trees is the number of bootstrap-trained trees.
	Trees int `json:"trees"`

	// MaxDepth bounds every tree.
	MaxDepth int `json:"max_depth"`

	// MinSamplesSplit is the smallest node that may be split.
	MinSamplesSplit int `json:"min_samples_split"`

	// MinSamplesLeaf is the smallest allowed leaf.
	MinSamplesLeaf int `json:"min_samples_leaf"`

	// Seed makes training reproducible. Tree i uses stream (Seed, i).
	Seed int64 `json:"seed"`

	// Workers bounds concurrent tree fitting. Zero means GOMAXPROCS.
	Workers int `json:"workers"`
}

// DefaultForestConfig returns 80 trees of depth 6 seeded with 42.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Trees:           80,
		MaxDepth:        6,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Seed:            42,
	}
}

// Validate checks the forest parameters.
func (c ForestConfig) Validate() error {
	if c.Trees < 1 {
		return fmt.Errorf("trees must be positive, got %d", c.Trees)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	if c.MinSamplesSplit < 2 {
		return fmt.Errorf("min_samples_split must be at least 2, got %d", c.MinSamplesSplit)
	}
	if c.MinSamplesLeaf < 1 {
		return fmt.Errorf("min_samples_leaf must be positive, got %d", c.MinSamplesLeaf)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	return nil
}

// Forest is an ensemble of regression trees whose prediction is the mean of
// its members.
type Forest struct {
	Trees []*Tree `json:"trees"`
}

// FitForest trains a forest on x (already standardized) and y.
func FitForest(ctx context.Context, x [][]float64, y []float64, cfg ForestConfig) (*Forest, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid forest config: %w", err)
	}
	if len(x) == 0 {
		return nil, errors.New("fit forest: no samples")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("fit forest: %d rows but %d labels", len(x), len(y))
	}

	params := treeParams{
		maxDepth:        cfg.MaxDepth,
		minSamplesSplit: cfg.MinSamplesSplit,
		minSamplesLeaf:  cfg.MinSamplesLeaf,
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	trees := make([]*Tree, cfg.Trees)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			//nolint:gosec // deterministic bootstrap sampling, not security sensitive
			rng := rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(i)))
			trees[i] = growTree(x, y, bootstrap(rng, len(x)), params)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fit forest: %w", err)
	}

	return &Forest{Trees: trees}, nil
}

// bootstrap draws n row indices with replacement.
func bootstrap(rng *rand.Rand, n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rng.IntN(n)
	}
	return idx
}

// Predict averages the tree predictions for one standardized row.
func (f *Forest) Predict(row []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range f.Trees {
		sum += t.Predict(row)
	}
	return sum / float64(len(f.Trees))
}
