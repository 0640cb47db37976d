// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	userIDKey
)

// logFields pairs each context key with the log field it fills.
var logFields = []struct {
	key   ctxKey
	field string
}{
	{requestIDKey, "request_id"},
	{userIDKey, "user_id"},
}

// NewRequestID returns a fresh UUIDv4 string.
func NewRequestID() string { return uuid.NewString() }

func stringValue(ctx context.Context, key ctxKey) string {
	v, _ := ctx.Value(key).(string) //nolint:errcheck // absent means ""
	return v
}

// ContextWithRequestID attaches the request id to ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request id or "".
func RequestIDFromContext(ctx context.Context) string { return stringValue(ctx, requestIDKey) }

// ContextWithUserID attaches the id of the user a request concerns.
func ContextWithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext returns the user id or "".
func UserIDFromContext(ctx context.Context) string { return stringValue(ctx, userIDKey) }

// Ctx returns the global logger carrying whichever ids ctx holds.
func Ctx(ctx context.Context) *zerolog.Logger {
	lc := Logger().With()
	for _, f := range logFields {
		if v := stringValue(ctx, f.key); v != "" {
			lc = lc.Str(f.field, v)
		}
	}
	l := lc.Logger()
	return &l
}
