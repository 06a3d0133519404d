// Package requestcontext carries request-scoped values (caller identity,
// client metadata, request ID and request time) from middleware to services
// without making services depend on net/http.
//
// Services read:
//
//	userID := requestcontext.UserID(ctx)
//	now := requestcontext.Now(ctx)
//
// Tests inject:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "poolpay/pkg/domain"
)

type (
	userIDKey      struct{}
	emailKey       struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

func value[T any](ctx context.Context, key any) (T, bool) {
	v, ok := ctx.Value(key).(T)
	return v, ok
}

func stringValue(ctx context.Context, key any) string {
	s, _ := value[string](ctx, key)
	return s
}

// UserID returns the authenticated user, or the nil UUID for anonymous
// requests such as the payment callback.
func UserID(ctx context.Context) id.UserID {
	userID, _ := value[id.UserID](ctx, userIDKey{})
	return userID
}

func WithUserID(ctx context.Context, userID id.UserID) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// Email is the caller's email from the access token. Payment intents are
// initialised with it.
func Email(ctx context.Context) string {
	return stringValue(ctx, emailKey{})
}

func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey{}, email)
}

func ClientIP(ctx context.Context) string {
	return stringValue(ctx, clientIPKey{})
}

// UserAgent returns the summarised User-Agent, never the raw header.
func UserAgent(ctx context.Context) string {
	return stringValue(ctx, userAgentKey{})
}

// WithClientMetadata stores the client IP and summarised User-Agent.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

func RequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey{})
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now returns the request-scoped time, falling back to the wall clock for
// the outbox worker and other non-HTTP callers.
func Now(ctx context.Context) time.Time {
	if t, ok := value[time.Time](ctx, requestTimeKey{}); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
