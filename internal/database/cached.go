// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package database

import (
	"context"
	"slices"
	"time"

	"github.com/tomtom215/lunasocial/internal/cache"
	"github.com/tomtom215/lunasocial/internal/metrics"
	"github.com/tomtom215/lunasocial/internal/recommend"
)

const catalogKey = "catalog"

// CacheSettings configures a CachedSource.
type CacheSettings struct {
	// TTL bounds how stale a cached user or venue can be.
	TTL time.Duration

	// Size is the maximum number of cached users and of cached venues.
	Size int
}

// CachedSource keeps user records, single venues and the full catalogue
// in memory for TTL. Interactions, bookings and groups always go through
// to next because they change with every request. The API never writes
// users or venues, so TTL expiry is the only invalidation needed.
//
// Callers receive shallow copies. Slice fields are shared with the cache
// and must be treated as read-only.
type CachedSource struct {
	next    recommend.DataSource
	users   *cache.LRU[recommend.User]
	venues  *cache.LRU[recommend.Venue]
	catalog *cache.LRU[[]recommend.Venue]
}

var _ recommend.DataSource = (*CachedSource)(nil)

// NewCachedSource wraps next.
func NewCachedSource(next recommend.DataSource, settings CacheSettings) *CachedSource {
	return &CachedSource{
		next:    next,
		users:   cache.New[recommend.User](settings.Size, settings.TTL),
		venues:  cache.New[recommend.Venue](settings.Size, settings.TTL),
		catalog: cache.New[[]recommend.Venue](1, settings.TTL),
	}
}

// GetUser implements recommend.DataSource.
func (c *CachedSource) GetUser(ctx context.Context, userID string) (*recommend.User, error) {
	if u, ok := c.users.Get(userID); ok {
		metrics.RecordCacheLookup("users", true)
		return &u, nil
	}
	metrics.RecordCacheLookup("users", false)

	u, err := c.next.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.users.Add(userID, *u)
	return u, nil
}

// GetVenue implements recommend.DataSource.
func (c *CachedSource) GetVenue(ctx context.Context, venueID string) (*recommend.Venue, error) {
	if v, ok := c.venues.Get(venueID); ok {
		metrics.RecordCacheLookup("venues", true)
		return &v, nil
	}
	metrics.RecordCacheLookup("venues", false)

	v, err := c.next.GetVenue(ctx, venueID)
	if err != nil {
		return nil, err
	}
	c.venues.Add(venueID, *v)
	return v, nil
}

// GetAllVenues implements recommend.DataSource.
func (c *CachedSource) GetAllVenues(ctx context.Context) ([]recommend.Venue, error) {
	if all, ok := c.catalog.Get(catalogKey); ok {
		metrics.RecordCacheLookup("catalog", true)
		return slices.Clone(all), nil
	}
	metrics.RecordCacheLookup("catalog", false)

	all, err := c.next.GetAllVenues(ctx)
	if err != nil {
		return nil, err
	}
	c.catalog.Add(catalogKey, slices.Clone(all))
	return all, nil
}

// GetUserInteractions implements recommend.DataSource.
func (c *CachedSource) GetUserInteractions(ctx context.Context, userID string) ([]recommend.Interaction, error) {
	return c.next.GetUserInteractions(ctx, userID)
}

// GetAllUserIDs implements recommend.DataSource.
func (c *CachedSource) GetAllUserIDs(ctx context.Context) ([]string, error) {
	return c.next.GetAllUserIDs(ctx)
}

// GetUserBookings implements recommend.DataSource.
func (c *CachedSource) GetUserBookings(ctx context.Context, userID string) ([]recommend.Booking, error) {
	return c.next.GetUserBookings(ctx, userID)
}

// GetUserGroups implements recommend.DataSource.
func (c *CachedSource) GetUserGroups(ctx context.Context, userID string) ([]recommend.Group, error) {
	return c.next.GetUserGroups(ctx, userID)
}
