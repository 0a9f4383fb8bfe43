package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"payout/internal/platform/metrics"
	"payout/pkg/domain"
	dErrors "payout/pkg/domain-errors"
	"payout/pkg/platform/httputil"
	"payout/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims is the validated identity of a bearer token.
type JWTClaims struct {
	Caller  domain.Address
	TokenID string
}

// RequireAuth validates the bearer token and places the caller address in the
// request context.
func RequireAuth(validator JWTValidator, logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				m.IncrementAuthFailures()
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				m.IncrementAuthFailures()
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}

			if claims.Caller.IsZero() {
				logger.WarnContext(ctx, "unauthorized access - token has no caller",
					"request_id", requestID,
					"token_id", claims.TokenID,
				)
				m.IncrementAuthFailures()
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Token subject must be an address"))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithCaller(ctx, claims.Caller)))
		})
	}
}
