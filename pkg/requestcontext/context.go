// Package requestcontext provides HTTP-independent accessors for
// request-scoped values.
//
// Middleware sets the values; services read them without importing net/http.
// The request-scoped clock is how services obtain "now" — a single timestamp
// per request keeps expiry checks, election-window checks, and age
// calculations consistent, and lets tests pin time:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "votegate/pkg/domain"
)

type (
	voterIDKey     struct{}
	voterNoKey     struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// VoterID retrieves the authenticated voter's internal ID from the context.
// Returns the zero value if the request is unauthenticated.
func VoterID(ctx context.Context) id.VoterID {
	if v, ok := ctx.Value(voterIDKey{}).(id.VoterID); ok {
		return v
	}
	return id.VoterID{}
}

// WithVoterID injects the authenticated voter's internal ID.
func WithVoterID(ctx context.Context, voterID id.VoterID) context.Context {
	return context.WithValue(ctx, voterIDKey{}, voterID)
}

// VoterNo retrieves the authenticated voter's public number from the context.
func VoterNo(ctx context.Context) id.VoterNo {
	if v, ok := ctx.Value(voterNoKey{}).(id.VoterNo); ok {
		return v
	}
	return ""
}

// WithVoterNo injects the authenticated voter's public number.
func WithVoterNo(ctx context.Context, no id.VoterNo) context.Context {
	return context.WithValue(ctx, voterNoKey{}, no)
}

// RequestID retrieves the request correlation ID, or "" when unset.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithRequestID injects the request correlation ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now returns the request-scoped time, falling back to the wall clock when no
// middleware has pinned one (background workers, tests that don't care).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the request-scoped time.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
