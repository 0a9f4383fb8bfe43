// Package httptransport assembles the public HTTP surface: the shared
// middleware chain, unauthenticated probes and the bearer-protected API.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"payout/internal/platform/metrics"
	"payout/internal/platform/middleware"
	"payout/pkg/platform/httputil"
)

// Registrar mounts a bounded context's routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether one backing service is reachable.
type HealthCheck func(ctx context.Context) error

type Dependencies struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Validator      middleware.JWTValidator
	RequestTimeout time.Duration
	// Checks are probed by /healthz, keyed by component name.
	Checks   map[string]HealthCheck
	Handlers []Registrar
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger, deps.Metrics))
	if deps.RequestTimeout > 0 {
		r.Use(middleware.Timeout(deps.RequestTimeout))
	}

	r.Get("/healthz", healthHandler(deps.Checks))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(deps.Validator, deps.Logger, deps.Metrics))
		for _, h := range deps.Handlers {
			h.Register(r)
		}
	})
	return r
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Components: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				resp.Components[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Components[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
