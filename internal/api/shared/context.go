// Package shared holds the request plumbing used by both the api handlers and
// the api middleware: context keys, JSON decoding, and error responses.
package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// ContextKey is the type of the request-scoped values set by the api layer.
type ContextKey string

const (
	// UserIDContextKey carries the authenticated user's id.
	UserIDContextKey ContextKey = "userID"

	// TraceIDKey carries the id that correlates logs with error responses.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a generated trace id.
	TraceIDLength = 16
)

// WithTraceID returns a copy of ctx carrying traceID. An empty traceID is
// replaced with a freshly generated one.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		traceID = generateTraceID()
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// SetTraceID adds a newly generated trace id to ctx.
func SetTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, "")
}

// GetTraceID returns the trace id stored in ctx, or "" when there is none.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// UserIDFromContext returns the authenticated user id stored in ctx.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}

// generateTraceID returns 32 hex characters. If crypto/rand fails the id is
// derived from the clock so that it is still unlikely to repeat.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if _, err := rand.Read(b); err != nil {
		now := time.Now()
		binary.BigEndian.PutUint64(b[:8], uint64(now.UnixNano()))
		binary.BigEndian.PutUint64(b[8:], uint64(now.Unix())<<32|uint64(now.Nanosecond()))
	}
	return hex.EncodeToString(b)
}
