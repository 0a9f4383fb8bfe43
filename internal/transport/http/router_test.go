package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "payout/internal/jwt_token"
	"payout/pkg/domain"
	"payout/pkg/platform/httputil"
	"payout/pkg/testutil"
)

type whoami struct{}

func (whoami) Register(r chi.Router) {
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		caller, err := httputil.Caller(r)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]domain.Address{"caller": caller})
	})
}

func newTestRouter(checks map[string]HealthCheck) (http.Handler, *jwttoken.JWTService) {
	jwtService := jwttoken.NewJWTService("test-key", "payout", "payout-api")
	return NewRouter(Dependencies{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Validator:      jwttoken.NewJWTServiceAdapter(jwtService),
		RequestTimeout: time.Second,
		Checks:         checks,
		Handlers:       []Registrar{whoami{}},
	}), jwtService
}

func TestRouter_AuthenticatedRoutes(t *testing.T) {
	router, jwtService := newTestRouter(nil)

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		resp := testutil.Do(t, router, req)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("token subject becomes the caller", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(testutil.Addr(4), "funder", time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp := testutil.Do(t, router, req)

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, testutil.Addr(4).Hex(), resp.JSON["caller"])
	})
}

func TestRouter_Health(t *testing.T) {
	t.Run("all components up", func(t *testing.T) {
		router, _ := newTestRouter(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
		})
		resp := testutil.Do(t, router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "ok", resp.JSON["status"])
	})

	t.Run("a failing component degrades", func(t *testing.T) {
		router, _ := newTestRouter(map[string]HealthCheck{
			"redis": func(context.Context) error { return errors.New("connection refused") },
		})
		resp := testutil.Do(t, router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
		assert.Equal(t, "degraded", resp.JSON["status"])
	})

	t.Run("health needs no token", func(t *testing.T) {
		router, _ := newTestRouter(nil)
		resp := testutil.Do(t, router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, resp.Code)
	})
}
