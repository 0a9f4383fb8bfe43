package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"payout/internal/funding/models"
	payoutmodels "payout/internal/payout/models"
	"payout/pkg/domain"
	"payout/pkg/platform/httputil"
)

// Service is the funding ledger as seen by the HTTP layer.
type Service interface {
	AddFunds(ctx context.Context, funder domain.Address, amount domain.Amount) (*models.Ledger, error)
	WithdrawFunds(ctx context.Context, manager, recipient domain.Address, amount domain.Amount) (*payoutmodels.Instruction, error)
	WithdrawAllFunds(ctx context.Context, manager, recipient domain.Address) (*payoutmodels.Instruction, error)
	State(ctx context.Context) (*models.Ledger, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the funding routes on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/funds", h.handleGetLedger)
	r.Post("/funds", h.handleAddFunds)
	r.Post("/funds/withdraw", h.handleWithdraw)
	r.Post("/funds/withdraw-all", h.handleWithdrawAll)
}

type addFundsRequest struct {
	Amount domain.Amount `json:"amount"`
}

type withdrawRequest struct {
	Recipient domain.Address `json:"recipient"`
	Amount    domain.Amount  `json:"amount"`
}

type withdrawAllRequest struct {
	Recipient domain.Address `json:"recipient"`
}

type ledgerResponse struct {
	Balance          domain.Amount `json:"balance"`
	LastFundedPeriod domain.Period `json:"last_funded_period"`
	Deposits         uint64        `json:"deposits"`
}

type withdrawResponse struct {
	Recipient domain.Address `json:"recipient"`
	Amount    domain.Amount  `json:"amount"`
	PayoutID  string         `json:"payout_id,omitempty"`
}

func toLedgerResponse(l *models.Ledger) ledgerResponse {
	return ledgerResponse{Balance: l.Balance, LastFundedPeriod: l.LastFundedPeriod, Deposits: l.Deposits}
}

func (h *Handler) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.service.State(r.Context())
	if err != nil {
		httputil.WriteFailure(w, r, h.logger, "failed to load ledger", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toLedgerResponse(ledger))
}

func (h *Handler) handleAddFunds(w http.ResponseWriter, r *http.Request) {
	caller, err := httputil.Caller(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req addFundsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	ledger, err := h.service.AddFunds(r.Context(), caller, req.Amount)
	if err != nil {
		httputil.WriteFailure(w, r, h.logger, "add funds failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toLedgerResponse(ledger))
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, err := httputil.Caller(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req withdrawRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	instr, err := h.service.WithdrawFunds(r.Context(), caller, req.Recipient, req.Amount)
	if err != nil {
		httputil.WriteFailure(w, r, h.logger, "withdraw funds failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, withdrawResult(req.Recipient, req.Amount, instr))
}

func (h *Handler) handleWithdrawAll(w http.ResponseWriter, r *http.Request) {
	caller, err := httputil.Caller(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req withdrawAllRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	instr, err := h.service.WithdrawAllFunds(r.Context(), caller, req.Recipient)
	if err != nil {
		httputil.WriteFailure(w, r, h.logger, "withdraw all funds failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, withdrawResult(req.Recipient, domain.Amount{}, instr))
}

func withdrawResult(recipient domain.Address, amount domain.Amount, instr *payoutmodels.Instruction) withdrawResponse {
	if instr == nil {
		return withdrawResponse{Recipient: recipient, Amount: amount}
	}
	return withdrawResponse{Recipient: instr.Recipient, Amount: instr.Amount, PayoutID: instr.ID.String()}
}
