// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/lunasocial/internal/recommend"
)

func TestCachedSource_ServesRepeatsFromMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := &flakySource{}
	src := NewCachedSource(next, CacheSettings{TTL: time.Minute, Size: 10})

	for i := 0; i < 3; i++ {
		if _, err := src.GetUser(ctx, "alice"); err != nil {
			t.Fatalf("GetUser() error = %v", err)
		}
		if _, err := src.GetVenue(ctx, "v1"); err != nil {
			t.Fatalf("GetVenue() error = %v", err)
		}
		if _, err := src.GetAllVenues(ctx); err != nil {
			t.Fatalf("GetAllVenues() error = %v", err)
		}
	}
	if got := next.callCount(); got != 3 {
		t.Errorf("underlying calls = %d, want 3 (one per cached lookup)", got)
	}

	// Interactions are never cached.
	_, _ = src.GetUserInteractions(ctx, "alice")
	_, _ = src.GetUserInteractions(ctx, "alice")
	if got := next.callCount(); got != 5 {
		t.Errorf("underlying calls = %d, want 5", got)
	}
}

func TestCachedSource_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	src := NewCachedSource(&flakySource{}, CacheSettings{TTL: time.Minute, Size: 10})

	u, _ := src.GetUser(ctx, "alice")
	u.Username = "mallory"
	again, _ := src.GetUser(ctx, "alice")
	if again.Username != "alice" {
		t.Errorf("cached user mutated through returned pointer: %q", again.Username)
	}

	all, _ := src.GetAllVenues(ctx)
	all[0] = recommend.Venue{ID: "overwritten"}
	again2, _ := src.GetAllVenues(ctx)
	if again2[0].ID != "v1" {
		t.Errorf("cached catalogue mutated through returned slice: %q", again2[0].ID)
	}
}

func TestCachedSource_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := &flakySource{}
	next.setErr(errStoreDown)
	src := NewCachedSource(next, CacheSettings{TTL: time.Minute, Size: 10})

	if _, err := src.GetUser(ctx, "alice"); !errors.Is(err, errStoreDown) {
		t.Fatalf("GetUser() error = %v, want errStoreDown", err)
	}

	next.setErr(nil)
	if _, err := src.GetUser(ctx, "alice"); err != nil {
		t.Fatalf("GetUser() after recovery error = %v", err)
	}
	if got := next.callCount(); got != 2 {
		t.Errorf("underlying calls = %d, want 2", got)
	}
}
