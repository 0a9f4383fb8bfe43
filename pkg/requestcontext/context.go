// Package requestcontext carries the caller, request id and request time
// through services without importing net/http.
package requestcontext

import (
	"context"
	"time"

	"payout/pkg/domain"
)

type key int

const (
	callerKey key = iota
	requestIDKey
	requestTimeKey
)

// Caller is the authenticated address; ok is false outside an authenticated
// request.
func Caller(ctx context.Context) (domain.Address, bool) {
	addr, ok := ctx.Value(callerKey).(domain.Address)
	return addr, ok
}

func WithCaller(ctx context.Context, caller domain.Address) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// RequestID is empty for work started outside a request, such as the payout
// retry worker.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Now is the time pinned to the request, so every record written by one
// operation carries the same timestamp. Without one it is the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey, t)
}
