package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"payout/internal/settings/models"
	"payout/pkg/domain"
	dErrors "payout/pkg/domain-errors"
	"payout/pkg/platform/httputil"
)

var errInvalidValue = dErrors.New(dErrors.CodeInvalidInput, "value is required and must fit the setting")

// Service is engine settings administration as seen by the HTTP layer.
type Service interface {
	Current(ctx context.Context) (*models.Settings, error)
	UpdateWithdrawalFrequencyLimit(ctx context.Context, caller domain.Address, limit uint64) error
	UpdateConfirmationsRequired(ctx context.Context, caller domain.Address, required uint32) error
	UpdateConfirmationsDeviation(ctx context.Context, caller domain.Address, bps uint32) error
	UpdateOracleAddress(ctx context.Context, caller domain.Address, oracle domain.Address) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the settings routes on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/settings", h.handleGet)
	r.Put("/settings/withdrawal-frequency-limit", h.handleFrequencyLimit)
	r.Put("/settings/confirmations-required", h.handleConfirmationsRequired)
	r.Put("/settings/confirmations-deviation", h.handleConfirmationsDeviation)
	r.Put("/settings/oracle-address", h.handleOracleAddress)
}

type settingsResponse struct {
	WithdrawalFrequencyLimit uint64         `json:"withdrawal_frequency_limit"`
	ConfirmationsRequired    uint32         `json:"confirmations_required"`
	ConfirmationsDeviation   uint32         `json:"confirmations_deviation"`
	OracleAddress            domain.Address `json:"oracle_address"`
	DeployedAt               time.Time      `json:"deployed_at"`
	UpdatedAt                time.Time      `json:"updated_at"`
}

type limitRequest struct {
	Value *uint64 `json:"value"`
}

type oracleRequest struct {
	Address domain.Address `json:"address"`
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Current(r.Context())
	if err != nil {
		httputil.WriteFailure(w, r, h.logger, "load settings failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, settingsResponse{
		WithdrawalFrequencyLimit: s.WithdrawalFrequencyLimit,
		ConfirmationsRequired:    s.ConfirmationsRequired,
		ConfirmationsDeviation:   s.ConfirmationsDeviation,
		OracleAddress:            s.OracleAddress,
		DeployedAt:               s.DeployedAt,
		UpdatedAt:                s.UpdatedAt,
	})
}

func (h *Handler) handleFrequencyLimit(w http.ResponseWriter, r *http.Request) {
	h.updateLimit(w, r, "update withdrawal frequency limit failed", 0, func(ctx context.Context, caller domain.Address, v uint64) error {
		return h.service.UpdateWithdrawalFrequencyLimit(ctx, caller, v)
	})
}

func (h *Handler) handleConfirmationsRequired(w http.ResponseWriter, r *http.Request) {
	h.updateLimit(w, r, "update confirmations required failed", maxUint32, func(ctx context.Context, caller domain.Address, v uint64) error {
		return h.service.UpdateConfirmationsRequired(ctx, caller, uint32(v))
	})
}

func (h *Handler) handleConfirmationsDeviation(w http.ResponseWriter, r *http.Request) {
	h.updateLimit(w, r, "update confirmations deviation failed", maxUint32, func(ctx context.Context, caller domain.Address, v uint64) error {
		return h.service.UpdateConfirmationsDeviation(ctx, caller, uint32(v))
	})
}

func (h *Handler) handleOracleAddress(w http.ResponseWriter, r *http.Request) {
	caller, err := httputil.Caller(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req oracleRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.UpdateOracleAddress(r.Context(), caller, req.Address); err != nil {
		httputil.WriteFailure(w, r, h.logger, "update oracle address failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

const maxUint32 = 1<<32 - 1

// updateLimit decodes {"value": n}. A bound of zero means unbounded.
func (h *Handler) updateLimit(
	w http.ResponseWriter,
	r *http.Request,
	msg string,
	bound uint64,
	fn func(ctx context.Context, caller domain.Address, v uint64) error,
) {
	caller, err := httputil.Caller(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req limitRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Value == nil || (bound > 0 && *req.Value > bound) {
		httputil.WriteError(w, errInvalidValue)
		return
	}
	if err := fn(r.Context(), caller, *req.Value); err != nil {
		httputil.WriteFailure(w, r, h.logger, msg, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
