// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/lunasocial/internal/logging"
	"github.com/tomtom215/lunasocial/internal/recommend"
)

// Training run states reported by POST /ranker/train.
const (
	trainStatusPublished = "published"
	trainStatusSkipped   = "skipped"
)

// TrainResponse is the body of a completed or skipped training run.
type TrainResponse struct {
	Status string                    `json:"status"`
	Reason string                    `json:"reason,omitempty"`
	Result *recommend.TrainingResult `json:"result,omitempty"`
}

// TrainRanker handles POST /api/v1/ranker/train. The run is detached from
// the client connection and bounded by the training timeout. Too few samples
// is a normal outcome and answers 200 with status "skipped"; a concurrent run
// answers 409.
func (h *Handler) TrainRanker(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.trainer == nil {
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "ranker training is disabled")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.trainTimeout)
	defer cancel()

	result, err := h.trainer.RunOnce(ctx)
	switch {
	case errors.Is(err, recommend.ErrInsufficientData):
		logging.Ctx(r.Context()).Info().Err(err).Msg("manual training skipped")
		rw.Success(TrainResponse{Status: trainStatusSkipped, Reason: err.Error(), Result: result})
	case err != nil:
		writeError(rw, r, err)
	default:
		logging.Ctx(r.Context()).Info().
			Int64("model_version", result.ModelVersion).
			Int("samples", result.Samples).
			Msg("manual training published a model")
		rw.Success(TrainResponse{Status: trainStatusPublished, Result: result})
	}
}

// RankerStatus handles GET /api/v1/ranker/status.
func (h *Handler) RankerStatus(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.engine.Status())
}
