// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

/*
Package cache provides a generic in-memory LRU with TTL expiration.

It backs database.CachedSource, which keeps user profiles and the venue
catalogue in memory between recommendation requests so that a burst of
lookups for the same user does not hit DuckDB each time.

# Usage Example

	users := cache.New[*recommend.User](10000, time.Minute)
	users.Add("user:alice", alice)
	if u, ok := users.Get("user:alice"); ok {
	    // use u
	}

# Thread Safety

All methods are safe for concurrent use. Get takes the write lock because
it reorders the recency list.
*/
package cache
