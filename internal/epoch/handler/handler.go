package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"payout/pkg/domain"
	dErrors "payout/pkg/domain-errors"
	"payout/pkg/platform/httputil"
)

// Oracle reads the current period.
type Oracle interface {
	CurrentPeriod(ctx context.Context) (domain.Period, error)
}

// Reporter advances the period on behalf of the oracle address.
type Reporter interface {
	Report(ctx context.Context, caller domain.Address, period domain.Period) error
}

type Handler struct {
	oracle   Oracle
	reporter Reporter
	logger   *slog.Logger
}

func New(oracle Oracle, reporter Reporter, logger *slog.Logger) *Handler {
	return &Handler{oracle: oracle, reporter: reporter, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/epoch", h.handleGet)
	r.Post("/epoch", h.handleReport)
}

type periodBody struct {
	Period *domain.Period `json:"period"`
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	period, err := h.oracle.CurrentPeriod(r.Context())
	if err != nil {
		httputil.WriteFailure(w, r, h.logger, "read current period failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, periodBody{Period: &period})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	caller, err := httputil.Caller(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req periodBody
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Period == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "period is required"))
		return
	}
	if err := h.reporter.Report(r.Context(), caller, *req.Period); err != nil {
		httputil.WriteFailure(w, r, h.logger, "report period failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
