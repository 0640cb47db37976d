// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/lunasocial/internal/recommend"
)

var errStoreDown = errors.New("io error")

// flakySource fails every call with err while err is set.
type flakySource struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *flakySource) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *flakySource) call() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *flakySource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *flakySource) GetUser(_ context.Context, id string) (*recommend.User, error) {
	if err := f.call(); err != nil {
		return nil, err
	}
	return &recommend.User{ID: id, Username: id}, nil
}

func (f *flakySource) GetVenue(_ context.Context, id string) (*recommend.Venue, error) {
	if err := f.call(); err != nil {
		return nil, err
	}
	return &recommend.Venue{ID: id}, nil
}

func (f *flakySource) GetAllVenues(context.Context) ([]recommend.Venue, error) {
	if err := f.call(); err != nil {
		return nil, err
	}
	return []recommend.Venue{{ID: "v1"}, {ID: "v2"}}, nil
}

func (f *flakySource) GetUserInteractions(context.Context, string) ([]recommend.Interaction, error) {
	return nil, f.call()
}

func (f *flakySource) GetAllUserIDs(context.Context) ([]string, error) {
	if err := f.call(); err != nil {
		return nil, err
	}
	return []string{"a", "b"}, nil
}

func (f *flakySource) GetUserBookings(context.Context, string) ([]recommend.Booking, error) {
	return nil, f.call()
}

func (f *flakySource) GetUserGroups(context.Context, string) ([]recommend.Group, error) {
	return nil, f.call()
}

func TestResilientSource_PassesThrough(t *testing.T) {
	t.Parallel()

	src := &flakySource{}
	r := NewResilientSource(src, BreakerSettings{MaxFailures: 2, Timeout: time.Minute}, zerolog.Nop())
	ctx := context.Background()

	u, err := r.GetUser(ctx, "u1")
	if err != nil || u.ID != "u1" {
		t.Fatalf("GetUser() = %+v, %v", u, err)
	}
	venues, err := r.GetAllVenues(ctx)
	if err != nil || len(venues) != 2 {
		t.Fatalf("GetAllVenues() = %v, %v", venues, err)
	}
	ids, err := r.GetAllUserIDs(ctx)
	if err != nil || len(ids) != 2 {
		t.Fatalf("GetAllUserIDs() = %v, %v", ids, err)
	}
	interactions, err := r.GetUserInteractions(ctx, "u1")
	if err != nil || interactions != nil {
		t.Fatalf("GetUserInteractions() = %v, %v", interactions, err)
	}
}

func TestResilientSource_OpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	src := &flakySource{err: errStoreDown}
	r := NewResilientSource(src, BreakerSettings{MaxFailures: 3, Timeout: time.Hour}, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := r.GetVenue(ctx, "v1"); !errors.Is(err, errStoreDown) {
			t.Fatalf("call %d: error = %v, want store error", i, err)
		}
	}
	if r.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", r.State())
	}

	_, err := r.GetVenue(ctx, "v1")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("open breaker error = %v, want ErrOpenState", err)
	}
	if src.callCount() != 3 {
		t.Errorf("open breaker reached the store: %d calls", src.callCount())
	}
}

func TestResilientSource_IgnoresExpectedErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{"not found", fmt.Errorf("user %q: %w", "x", recommend.ErrNotFound)},
		{"invalid input", recommend.ErrInvalidInput},
		{"canceled", context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			src := &flakySource{err: tt.err}
			r := NewResilientSource(src, BreakerSettings{MaxFailures: 1, Timeout: time.Hour}, zerolog.Nop())

			for i := 0; i < 5; i++ {
				if _, err := r.GetUser(context.Background(), "x"); !errors.Is(err, tt.err) {
					t.Fatalf("error = %v, want %v", err, tt.err)
				}
			}
			if r.State() != gobreaker.StateClosed {
				t.Errorf("State() = %v, want closed", r.State())
			}
		})
	}
}

func TestResilientSource_RecoversAfterTimeout(t *testing.T) {
	t.Parallel()

	src := &flakySource{err: errStoreDown}
	r := NewResilientSource(src, BreakerSettings{MaxFailures: 1, Timeout: 50 * time.Millisecond}, zerolog.Nop())
	ctx := context.Background()

	if _, err := r.GetUserBookings(ctx, "u1"); !errors.Is(err, errStoreDown) {
		t.Fatalf("error = %v", err)
	}
	if r.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", r.State())
	}

	src.setErr(nil)
	time.Sleep(100 * time.Millisecond)

	if _, err := r.GetUserGroups(ctx, "u1"); err != nil {
		t.Fatalf("probe error = %v", err)
	}
	if r.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed after a successful probe", r.State())
	}
}
