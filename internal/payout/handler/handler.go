package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"payout/internal/payout/models"
	"payout/pkg/domain"
	dErrors "payout/pkg/domain-errors"
	"payout/pkg/platform/httputil"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Service lists payout instructions.
type Service interface {
	Recent(ctx context.Context, limit int) ([]*models.Instruction, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/payouts", h.handleList)
}

type instructionResponse struct {
	ID        uuid.UUID        `json:"id"`
	Kind      models.Kind      `json:"kind"`
	Recipient domain.Address   `json:"recipient"`
	Amount    domain.Amount    `json:"amount"`
	ProjectID domain.ProjectID `json:"project_id,omitempty"`
	Period    domain.Period    `json:"period,omitempty"`
	Status    models.Status    `json:"status"`
	Attempts  int              `json:"attempts"`
	LastError string           `json:"last_error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	SentAt    *time.Time       `json:"sent_at,omitempty"`
}

type listResponse struct {
	Payouts []instructionResponse `json:"payouts"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxLimit {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be between 1 and 500"))
			return
		}
		limit = n
	}

	instrs, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		httputil.WriteFailure(w, r, h.logger, "list payouts failed", err)
		return
	}
	resp := listResponse{Payouts: make([]instructionResponse, 0, len(instrs))}
	for _, i := range instrs {
		resp.Payouts = append(resp.Payouts, instructionResponse{
			ID:        i.ID,
			Kind:      i.Kind,
			Recipient: i.Recipient,
			Amount:    i.Amount,
			ProjectID: i.ProjectID,
			Period:    i.Period,
			Status:    i.Status,
			Attempts:  i.Attempts,
			LastError: i.LastError,
			CreatedAt: i.CreatedAt,
			SentAt:    i.SentAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
