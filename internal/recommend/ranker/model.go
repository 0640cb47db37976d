// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package ranker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Model is a trained ranker: the scaler fitted on the training matrix and the
// forest fitted on its standardized rows. A Model is immutable once published.
type Model struct {
	ID        string          `json:"id"`
	Version   int64           `json:"version"`
	TrainedAt time.Time       `json:"trained_at"`
	Samples   int             `json:"samples"`
	Features  int             `json:"features"`
	Config    ForestConfig    `json:"config"`
	Scaler    *StandardScaler `json:"scaler"`
	Forest    *Forest         `json:"forest"`
}

// Train fits a scaler on x, then a forest on the scaled rows.
func Train(ctx context.Context, x [][]float64, y []float64, cfg ForestConfig) (*Model, error) {
	scaler, err := FitScaler(x)
	if err != nil {
		return nil, err
	}

	forest, err := FitForest(ctx, scaler.TransformAll(x), y, cfg)
	if err != nil {
		return nil, err
	}

	return &Model{
		ID:        uuid.NewString(),
		TrainedAt: time.Now().UTC(),
		Samples:   len(x),
		Features:  len(x[0]),
		Config:    cfg,
		Scaler:    scaler,
		Forest:    forest,
	}, nil
}

// Predict scores a raw (unscaled) feature vector. The result is clamped to [0,1].
func (m *Model) Predict(features []float64) float64 {
	p := m.Forest.Predict(m.Scaler.Transform(features))
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(0, math.Min(1, p))
}

// Validate checks that a decoded model is usable for inference.
func (m *Model) Validate() error {
	if m.Scaler == nil || m.Forest == nil {
		return errors.New("model is missing scaler or forest")
	}
	if len(m.Scaler.Mean) != m.Features || len(m.Scaler.Scale) != m.Features {
		return fmt.Errorf("scaler width %d does not match %d features", len(m.Scaler.Mean), m.Features)
	}
	if len(m.Forest.Trees) == 0 {
		return errors.New("model has no trees")
	}
	for i, t := range m.Forest.Trees {
		for j, n := range t.Nodes {
			if n.Left == leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= m.Features ||
				n.Left <= j || n.Right <= j || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
				return fmt.Errorf("tree %d node %d is malformed", i, j)
			}
		}
	}
	return nil
}
