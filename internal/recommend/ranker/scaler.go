// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package ranker

import (
	"errors"
	"fmt"
	"math"
)

// StandardScaler standardizes features to zero mean and unit variance.
// Features with zero variance keep a scale of 1 so they pass through centered.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitScaler computes per-column mean and population standard deviation.
func FitScaler(x [][]float64) (*StandardScaler, error) {
	if len(x) == 0 {
		return nil, errors.New("fit scaler: empty matrix")
	}
	width := len(x[0])
	mean := make([]float64, width)
	for i, row := range x {
		if len(row) != width {
			return nil, fmt.Errorf("fit scaler: row %d has %d columns, want %d", i, len(row), width)
		}
		for j, v := range row {
			mean[j] += v
		}
	}
	n := float64(len(x))
	for j := range mean {
		mean[j] /= n
	}

	scale := make([]float64, width)
	for _, row := range x {
		for j, v := range row {
			d := v - mean[j]
			scale[j] += d * d
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / n)
		if scale[j] == 0 {
			scale[j] = 1
		}
	}

	return &StandardScaler{Mean: mean, Scale: scale}, nil
}

// Transform returns a standardized copy of row. Extra columns beyond the
// fitted width are ignored; missing columns are treated as the column mean.
func (s *StandardScaler) Transform(row []float64) []float64 {
	out := make([]float64, len(s.Mean))
	for j := range s.Mean {
		if j >= len(row) {
			continue
		}
		out[j] = (row[j] - s.Mean[j]) / s.Scale[j]
	}
	return out
}

// TransformAll standardizes every row of x.
func (s *StandardScaler) TransformAll(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = s.Transform(row)
	}
	return out
}
