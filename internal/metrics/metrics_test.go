// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
	gobreaker "github.com/sony/gobreaker/v2"
)

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	m, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T is not a metric", o)
	}
	var pb io_prometheus_client.Metric
	if err := m.Write(&pb); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return pb.GetHistogram().GetSampleCount()
}

func TestRecordDBQuery(t *testing.T) {
	op := "test_get_user"

	RecordDBQuery(op, time.Millisecond, nil, true)
	RecordDBQuery(op, time.Millisecond, errors.New("not found"), false)
	RecordDBQuery(op, time.Millisecond, errors.New("io error"), true)

	if got := histogramCount(t, DBQueryDuration.WithLabelValues(op)); got != 3 {
		t.Errorf("duration samples = %d, want 3", got)
	}
	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues(op)); got != 1 {
		t.Errorf("errors = %f, want 1", got)
	}
}

func TestRecordRecommendation(t *testing.T) {
	kind := "test_venues"

	RecordRecommendation(kind, 2*time.Millisecond, 7, nil)
	RecordRecommendation(kind, time.Millisecond, 0, errors.New("boom"))

	if got := histogramCount(t, RecommendDuration.WithLabelValues(kind)); got != 2 {
		t.Errorf("duration samples = %d, want 2", got)
	}
	if got := histogramCount(t, RecommendResults.WithLabelValues(kind)); got != 1 {
		t.Errorf("result samples = %d, want 1", got)
	}
	if got := testutil.ToFloat64(RecommendErrors.WithLabelValues(kind)); got != 1 {
		t.Errorf("errors = %f, want 1", got)
	}
}

func TestRecordTraining(t *testing.T) {
	before := testutil.ToFloat64(RankerTrainingRuns.WithLabelValues(TrainingSkipped))

	RecordTraining(TrainingSkipped, time.Second, 12)
	if got := testutil.ToFloat64(RankerTrainingRuns.WithLabelValues(TrainingSkipped)); got != before+1 {
		t.Errorf("skipped runs = %f, want %f", got, before+1)
	}
	if got := testutil.ToFloat64(RankerTrainingSamples); got != 12 {
		t.Errorf("samples gauge = %f, want 12", got)
	}

	RecordTraining(TrainingBusy, 0, -1)
	if got := testutil.ToFloat64(RankerTrainingSamples); got != 12 {
		t.Errorf("busy run changed samples gauge to %f", got)
	}

	SetModelVersion(4)
	if got := testutil.ToFloat64(RankerModelVersion); got != 4 {
		t.Errorf("model version = %f, want 4", got)
	}
}

func TestRecordSnapshot(t *testing.T) {
	RecordSnapshot("test_save", nil)
	RecordSnapshot("test_save", errors.New("disk full"))

	if got := testutil.ToFloat64(RankerSnapshotOps.WithLabelValues("test_save", "success")); got != 1 {
		t.Errorf("success = %f, want 1", got)
	}
	if got := testutil.ToFloat64(RankerSnapshotOps.WithLabelValues("test_save", "failure")); got != 1 {
		t.Errorf("failure = %f, want 1", got)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	cacheType := "test_users"

	RecordCacheLookup(cacheType, true)
	RecordCacheLookup(cacheType, true)
	RecordCacheLookup(cacheType, false)

	if got := testutil.ToFloat64(CacheLookups.WithLabelValues(cacheType, "hit")); got != 2 {
		t.Errorf("hits = %f, want 2", got)
	}
	if got := testutil.ToFloat64(CacheLookups.WithLabelValues(cacheType, "miss")); got != 1 {
		t.Errorf("misses = %f, want 1", got)
	}
}

func TestBreakerMetrics(t *testing.T) {
	name := "test-breaker"

	RecordBreakerResult(name, 0, nil)
	RecordBreakerResult(name, 3, errors.New("query failed"))
	RecordBreakerResult(name, 3, fmt.Errorf("wrapped: %w", gobreaker.ErrOpenState))

	for result, want := range map[string]float64{"success": 1, "failure": 1, "rejected": 1} {
		if got := testutil.ToFloat64(CircuitBreakerRequests.WithLabelValues(name, result)); got != want {
			t.Errorf("%s = %f, want %f", result, got, want)
		}
	}
	if got := testutil.ToFloat64(CircuitBreakerConsecutiveFailures.WithLabelValues(name)); got != 3 {
		t.Errorf("consecutive failures = %f, want 3", got)
	}

	RecordBreakerTransition(name, gobreaker.StateClosed, gobreaker.StateOpen)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues(name)); got != 2 {
		t.Errorf("state = %f, want 2", got)
	}
	RecordBreakerTransition(name, gobreaker.StateHalfOpen, gobreaker.StateClosed)
	if got := testutil.ToFloat64(CircuitBreakerConsecutiveFailures.WithLabelValues(name)); got != 0 {
		t.Errorf("closing should reset consecutive failures, got %f", got)
	}
	if got := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues(name, "closed", "open")); got != 1 {
		t.Errorf("closed->open transitions = %f, want 1", got)
	}
}

func TestMetricsLint(t *testing.T) {
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint() error = %v", err)
	}
	for _, p := range problems {
		t.Errorf("lint %s: %s", p.Metric, p.Text)
	}
}
