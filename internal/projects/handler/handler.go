package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"payout/internal/projects/models"
	"payout/internal/projects/service"
	"payout/pkg/domain"
	"payout/pkg/platform/httputil"
)

// Service is the project registry as seen by the HTTP layer.
type Service interface {
	AddProject(ctx context.Context, caller domain.Address, in service.AddProjectInput) (*models.Project, error)
	SuspendProject(ctx context.Context, caller domain.Address, id domain.ProjectID) error
	EnableProject(ctx context.Context, caller domain.Address, id domain.ProjectID) error
	RemoveProject(ctx context.Context, caller domain.Address, id domain.ProjectID) error
	AddProjectContract(ctx context.Context, caller domain.Address, id domain.ProjectID, contract domain.Address) error
	RemoveProjectContract(ctx context.Context, caller domain.Address, id domain.ProjectID, contract domain.Address) error
	SetProjectContracts(ctx context.Context, caller domain.Address, id domain.ProjectID, contracts []domain.Address) error
	UpdateProjectMetadataURI(ctx context.Context, caller domain.Address, id domain.ProjectID, uri string) error
	UpdateProjectOwner(ctx context.Context, caller domain.Address, id domain.ProjectID, owner domain.Address) error
	UpdateProjectRewardsRecipient(ctx context.Context, caller domain.Address, id domain.ProjectID, recipient domain.Address) error
	Get(ctx context.Context, id domain.ProjectID) (*models.Project, error)
	ProjectIDOfContract(ctx context.Context, contract domain.Address) (domain.ProjectID, error)
	List(ctx context.Context) ([]*models.Project, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the registry routes on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/projects", h.handleList)
	r.Post("/projects", h.handleAdd)
	r.Get("/contracts/{address}/project", h.handleProjectOfContract)
	r.Route("/projects/{id}", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Delete("/", h.handleRemove)
		r.Post("/suspend", h.handleSuspend)
		r.Post("/enable", h.handleEnable)
		r.Post("/contracts", h.handleAddContract)
		r.Put("/contracts", h.handleSetContracts)
		r.Delete("/contracts/{address}", h.handleRemoveContract)
		r.Put("/metadata-uri", h.handleUpdateMetadataURI)
		r.Put("/owner", h.handleUpdateOwner)
		r.Put("/rewards-recipient", h.handleUpdateRewardsRecipient)
	})
}

type projectResponse struct {
	ID               domain.ProjectID `json:"id"`
	Owner            domain.Address   `json:"owner"`
	RewardsRecipient domain.Address   `json:"rewards_recipient"`
	MetadataURI      string           `json:"metadata_uri"`
	Contracts        []domain.Address `json:"contracts"`
	ActiveFromPeriod domain.Period    `json:"active_from_period"`
	ActiveToPeriod   domain.Period    `json:"active_to_period"`
	Active           bool             `json:"active"`
}

func toResponse(p *models.Project) projectResponse {
	contracts := p.Contracts
	if contracts == nil {
		contracts = []domain.Address{}
	}
	return projectResponse{
		ID:               p.ID,
		Owner:            p.Owner,
		RewardsRecipient: p.RewardsRecipient,
		MetadataURI:      p.MetadataURI,
		Contracts:        contracts,
		ActiveFromPeriod: p.ActiveFromPeriod,
		ActiveToPeriod:   p.ActiveToPeriod,
		Active:           p.IsActive(),
	}
}

type addProjectRequest struct {
	Owner            domain.Address   `json:"owner"`
	RewardsRecipient domain.Address   `json:"rewards_recipient"`
	MetadataURI      string           `json:"metadata_uri"`
	Contracts        []domain.Address `json:"contracts"`
}

type contractRequest struct {
	Contract domain.Address `json:"contract"`
}

type contractsRequest struct {
	Contracts []domain.Address `json:"contracts"`
}

type metadataURIRequest struct {
	MetadataURI string `json:"metadata_uri"`
}

type ownerRequest struct {
	Owner domain.Address `json:"owner"`
}

type recipientRequest struct {
	Recipient domain.Address `json:"recipient"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteFailure(w, r, h.logger, "list projects failed", err)
		return
	}
	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toResponse(p))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"projects": out})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteFailure(w, r, h.logger, "get project failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) handleProjectOfContract(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := h.service.ProjectIDOfContract(r.Context(), addr)
	if err != nil {
		httputil.WriteFailure(w, r, h.logger, "contract lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"contract": addr, "project_id": id})
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	caller, err := httputil.Caller(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req addProjectRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.AddProject(r.Context(), caller, service.AddProjectInput{
		Owner:            req.Owner,
		RewardsRecipient: req.RewardsRecipient,
		MetadataURI:      req.MetadataURI,
		Contracts:        req.Contracts,
	})
	if err != nil {
		httputil.WriteFailure(w, r, h.logger, "add project failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "remove project failed", h.service.RemoveProject)
}

func (h *Handler) handleSuspend(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "suspend project failed", h.service.SuspendProject)
}

func (h *Handler) handleEnable(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "enable project failed", h.service.EnableProject)
}

func (h *Handler) handleAddContract(w http.ResponseWriter, r *http.Request) {
	var req contractRequest
	h.mutateWith(w, r, &req, "add project contract failed", func(ctx context.Context, caller domain.Address, id domain.ProjectID) error {
		return h.service.AddProjectContract(ctx, caller, id, req.Contract)
	})
}

func (h *Handler) handleSetContracts(w http.ResponseWriter, r *http.Request) {
	var req contractsRequest
	h.mutateWith(w, r, &req, "set project contracts failed", func(ctx context.Context, caller domain.Address, id domain.ProjectID) error {
		return h.service.SetProjectContracts(ctx, caller, id, req.Contracts)
	})
}

func (h *Handler) handleRemoveContract(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.mutate(w, r, "remove project contract failed", func(ctx context.Context, caller domain.Address, id domain.ProjectID) error {
		return h.service.RemoveProjectContract(ctx, caller, id, addr)
	})
}

func (h *Handler) handleUpdateMetadataURI(w http.ResponseWriter, r *http.Request) {
	var req metadataURIRequest
	h.mutateWith(w, r, &req, "update metadata uri failed", func(ctx context.Context, caller domain.Address, id domain.ProjectID) error {
		return h.service.UpdateProjectMetadataURI(ctx, caller, id, req.MetadataURI)
	})
}

func (h *Handler) handleUpdateOwner(w http.ResponseWriter, r *http.Request) {
	var req ownerRequest
	h.mutateWith(w, r, &req, "update owner failed", func(ctx context.Context, caller domain.Address, id domain.ProjectID) error {
		return h.service.UpdateProjectOwner(ctx, caller, id, req.Owner)
	})
}

func (h *Handler) handleUpdateRewardsRecipient(w http.ResponseWriter, r *http.Request) {
	var req recipientRequest
	h.mutateWith(w, r, &req, "update rewards recipient failed", func(ctx context.Context, caller domain.Address, id domain.ProjectID) error {
		return h.service.UpdateProjectRewardsRecipient(ctx, caller, id, req.Recipient)
	})
}

type mutation func(ctx context.Context, caller domain.Address, id domain.ProjectID) error

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, msg string, fn mutation) {
	h.mutateWith(w, r, nil, msg, fn)
}

// mutateWith resolves the caller and project id, decodes body into req when
// set, and answers 204 on success.
func (h *Handler) mutateWith(w http.ResponseWriter, r *http.Request, req any, msg string, fn mutation) {
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
	if req != nil {
		if err := httputil.DecodeJSON(r, req); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	if err := fn(r.Context(), caller, id); err != nil {
		httputil.WriteFailure(w, r, h.logger, msg, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func projectID(r *http.Request) (domain.ProjectID, error) {
	return domain.ParseProjectID(chi.URLParam(r, "id"))
}
