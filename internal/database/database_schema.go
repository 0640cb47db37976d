// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

/*
database_schema.go - Database Schema Management

Tables:
  - users: profile owner records with home coordinates and interest tags
  - venues: the read-only catalog scored by the engine
  - interactions: append-only log of view/like/comment/save/click/visit events
  - bookings: reservations, used for optional candidate exclusion
  - social_groups: groups with members and preferred venue categories

List columns (interests, friends, blocked_users, members,
venue_preferences) are JSON arrays stored as VARCHAR so the schema needs
no extension beyond DuckDB core.

Index Strategy:
Every per-user read is an equality filter on user_id, so interactions and
bookings are indexed on it. Catalog reads are full scans ordered by id.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core tables and indexes
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, query := range indexCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR PRIMARY KEY,
			username VARCHAR NOT NULL,
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			interests VARCHAR NOT NULL DEFAULT '[]',
			friends VARCHAR NOT NULL DEFAULT '[]',
			blocked_users VARCHAR NOT NULL DEFAULT '[]',
			updated_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS venues (
			id VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			description VARCHAR NOT NULL DEFAULT '',
			category VARCHAR NOT NULL,
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			rating DOUBLE NOT NULL DEFAULT 0,
			trending_score DOUBLE NOT NULL DEFAULT 0,
			capacity INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id VARCHAR PRIMARY KEY,
			user_id VARCHAR NOT NULL,
			venue_id VARCHAR NOT NULL,
			kind VARCHAR NOT NULL,
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			occurred_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id VARCHAR PRIMARY KEY,
			user_id VARCHAR NOT NULL,
			venue_id VARCHAR NOT NULL,
			booking_date TIMESTAMP NOT NULL,
			party_size INTEGER NOT NULL DEFAULT 1,
			status VARCHAR NOT NULL DEFAULT 'confirmed'
		);`,
		`CREATE TABLE IF NOT EXISTS social_groups (
			id VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			description VARCHAR NOT NULL DEFAULT '',
			members VARCHAR NOT NULL DEFAULT '[]',
			creator_id VARCHAR NOT NULL,
			venue_preferences VARCHAR NOT NULL DEFAULT '[]',
			updated_at TIMESTAMP NOT NULL
		);`,
	}
}

func indexCreationQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings(user_id);`,
	}
}
