package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"payout/internal/withdrawal/models"
	"payout/internal/withdrawal/service"
	"payout/pkg/domain"
	"payout/pkg/platform/httputil"
)

// Service is the withdrawal engine as seen by the HTTP layer.
type Service interface {
	RequestWithdrawal(ctx context.Context, caller domain.Address, id domain.ProjectID) (*models.Request, error)
	CompleteWithdrawal(ctx context.Context, provider domain.Address, id domain.ProjectID, requestedPeriod domain.Period, amount domain.Amount) (*service.Submission, error)
	HasPendingWithdrawal(ctx context.Context, id domain.ProjectID, period domain.Period) (bool, error)
	PendingRequest(ctx context.Context, id domain.ProjectID) (*models.Request, error)
	PendingRequests(ctx context.Context) ([]*models.Request, error)
	History(ctx context.Context, id domain.ProjectID) (*models.History, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the withdrawal routes on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/withdrawals", h.handleList)
	r.Route("/withdrawals/{id}", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Post("/", h.handleRequest)
		r.Post("/confirmations", h.handleConfirm)
		r.Get("/pending", h.handleHasPending)
		r.Get("/history", h.handleHistory)
	})
}

type confirmRequest struct {
	RequestedPeriod domain.Period `json:"requested_period"`
	Amount          domain.Amount `json:"amount"`
}

type requestResponse struct {
	ProjectID       domain.ProjectID `json:"project_id"`
	RequestedPeriod domain.Period    `json:"requested_period"`
	Confirmations   struct {
		Value     domain.Amount    `json:"value"`
		Count     uint32           `json:"count"`
		Providers []domain.Address `json:"providers"`
	} `json:"confirmations"`
}

type submissionResponse struct {
	Result           service.Result   `json:"result"`
	Request          *requestResponse `json:"request,omitempty"`
	PayoutID         string           `json:"payout_id,omitempty"`
	CompletionPeriod domain.Period    `json:"completion_period,omitempty"`
}

type historyResponse struct {
	ProjectID            domain.ProjectID `json:"project_id"`
	Completions          uint64           `json:"completions"`
	LastCompletionPeriod domain.Period    `json:"last_completion_period"`
	LastAmount           domain.Amount    `json:"last_amount"`
}

func toResponse(r *models.Request) *requestResponse {
	out := &requestResponse{ProjectID: r.ProjectID, RequestedPeriod: r.RequestedPeriod}
	out.Confirmations.Value = r.Confirmations.Value
	out.Confirmations.Count = r.Confirmations.Count
	out.Confirmations.Providers = r.Confirmations.Providers
	if out.Confirmations.Providers == nil {
		out.Confirmations.Providers = []domain.Address{}
	}
	return out
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.PendingRequests(r.Context())
	if err != nil {
		httputil.WriteFailure(w, r, h.logger, "list withdrawal requests failed", err)
		return
	}
	out := make([]*requestResponse, 0, len(list))
	for _, req := range list {
		out = append(out, toResponse(req))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"requests": out})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := h.service.PendingRequest(r.Context(), id)
	if err != nil {
		httputil.WriteFailure(w, r, h.logger, "get withdrawal request failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(req))
}

func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) {
	caller, err := httputil.Caller(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := projectID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := h.service.RequestWithdrawal(r.Context(), caller, id)
	if err != nil {
		httputil.WriteFailure(w, r, h.logger, "request withdrawal failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(req))
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	caller, err := httputil.Caller(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := projectID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req confirmRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	sub, err := h.service.CompleteWithdrawal(r.Context(), caller, id, req.RequestedPeriod, req.Amount)
	if err != nil {
		httputil.WriteFailure(w, r, h.logger, "complete withdrawal failed", err)
		return
	}
	out := submissionResponse{Result: sub.Result, CompletionPeriod: sub.CompletionPeriod}
	if sub.Request != nil {
		out.Request = toResponse(sub.Request)
	}
	if sub.Payout != nil {
		out.PayoutID = sub.Payout.ID.String()
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleHasPending(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	period, err := domain.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	pending, err := h.service.HasPendingWithdrawal(r.Context(), id, period)
	if err != nil {
		httputil.WriteFailure(w, r, h.logger, "pending withdrawal lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"project_id": id, "period": period, "pending": pending})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	hist, err := h.service.History(r.Context(), id)
	if err != nil {
		httputil.WriteFailure(w, r, h.logger, "withdrawal history failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, historyResponse{
		ProjectID:            id,
		Completions:          hist.Completions,
		LastCompletionPeriod: hist.LastCompletionPeriod,
		LastAmount:           hist.LastAmount,
	})
}

func projectID(r *http.Request) (domain.ProjectID, error) {
	return domain.ParseProjectID(chi.URLParam(r, "id"))
}
