package testutil

import (
	"net/http"

	"payout/pkg/domain"
	"payout/pkg/requestcontext"
)

// WithCaller adds an authenticated principal to the request context.
// This simulates what the auth middleware does for authenticated requests.
func WithCaller(req *http.Request, caller domain.Address) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// Addr returns a deterministic non-zero address whose last byte is n.
func Addr(n byte) domain.Address {
	var a domain.Address
	a[0] = 0xa0
	a[19] = n
	return a
}
