// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package ranker

import (
	"sync/atomic"
)

// Registry owns the currently active model. Readers call Active on every
// request and never block; publishing replaces the pointer in one atomic step.
type Registry struct {
	current atomic.Pointer[Model]
	version atomic.Int64
}

// NewRegistry returns an empty registry. Until a model is published the
// engine ranks with the heuristic only.
func NewRegistry() *Registry {
	return &Registry{}
}

// Active returns the active model or nil.
func (r *Registry) Active() *Model {
	return r.current.Load()
}

// Publish assigns the next version to m, makes it active and returns the
// model it replaced.
func (r *Registry) Publish(m *Model) *Model {
	m.Version = r.version.Add(1)
	return r.current.Swap(m)
}

// Reserve makes sure later publishes are numbered above v. Versions already
// handed out are never reused, so stored snapshots keep unique keys.
func (r *Registry) Reserve(v int64) {
	for {
		cur := r.version.Load()
		if v <= cur || r.version.CompareAndSwap(cur, v) {
			return
		}
	}
}

// Restore activates a previously persisted model, keeping its version.
// Later publishes continue numbering after it.
func (r *Registry) Restore(m *Model) {
	r.Reserve(m.Version)
	r.current.Store(m)
}

// Version returns the version of the active model, or zero.
func (r *Registry) Version() int64 {
	if m := r.current.Load(); m != nil {
		return m.Version
	}
	return 0
}
