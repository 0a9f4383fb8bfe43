package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"payout/internal/access"
	"payout/pkg/domain"
	"payout/pkg/platform/httputil"
)

// Service is role administration as seen by the HTTP layer.
type Service interface {
	HasRole(ctx context.Context, principal domain.Address, role access.Role) (bool, error)
	Grant(ctx context.Context, caller domain.Address, role access.Role, member domain.Address) error
	Revoke(ctx context.Context, caller domain.Address, role access.Role, member domain.Address) error
	Members(ctx context.Context, role access.Role) ([]domain.Address, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the role routes on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/roles/{role}/members", h.handleMembers)
	r.Get("/roles/{role}/members/{address}", h.handleHasRole)
	r.Put("/roles/{role}/members/{address}", h.handleGrant)
	r.Delete("/roles/{role}/members/{address}", h.handleRevoke)
}

func (h *Handler) handleMembers(w http.ResponseWriter, r *http.Request) {
	role, err := access.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	members, err := h.service.Members(r.Context(), role)
	if err != nil {
		httputil.WriteFailure(w, r, h.logger, "list role members failed", err)
		return
	}
	if members == nil {
		members = []domain.Address{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"role": role, "members": members})
}

func (h *Handler) handleHasRole(w http.ResponseWriter, r *http.Request) {
	role, member, err := roleAndMember(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ok, err := h.service.HasRole(r.Context(), member, role)
	if err != nil {
		httputil.WriteFailure(w, r, h.logger, "role lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"role": role, "member": member, "has_role": ok})
}

func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "grant role failed", h.service.Grant)
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "revoke role failed", h.service.Revoke)
}

func (h *Handler) mutate(
	w http.ResponseWriter,
	r *http.Request,
	msg string,
	fn func(ctx context.Context, caller domain.Address, role access.Role, member domain.Address) error,
) {
	caller, err := httputil.Caller(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	role, member, err := roleAndMember(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := fn(r.Context(), caller, role, member); err != nil {
		httputil.WriteFailure(w, r, h.logger, msg, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func roleAndMember(r *http.Request) (access.Role, domain.Address, error) {
	role, err := access.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		return "", domain.ZeroAddress, err
	}
	member, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		return "", domain.ZeroAddress, err
	}
	return role, member, nil
}
