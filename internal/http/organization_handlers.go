package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
	"github.com/CareO-HQ/careo-sub007/internal/repository"
)

// OrganizationHandler platform-level organization management under
// /admin/api/v1/organizations. Not organization-scoped itself.
type OrganizationHandler struct {
	organizations repository.OrganizationsRepository
	logger        *zap.Logger
}

func NewOrganizationHandler(organizations repository.OrganizationsRepository, logger *zap.Logger) *OrganizationHandler {
	return &OrganizationHandler{organizations: organizations, logger: logger}
}

type organizationRequest struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Status string `json:"status"`
}

// Handle routes /admin/api/v1/organizations and /admin/api/v1/organizations/{id}.
func (h *OrganizationHandler) Handle(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/admin/api/v1/organizations")
	rest = strings.TrimPrefix(rest, "/")

	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}
	if strings.Contains(rest, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, rest)
	case http.MethodPut:
		h.update(w, r, rest)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *OrganizationHandler) list(w http.ResponseWriter, r *http.Request) {
	organizations, err := h.organizations.ListOrganizations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if organizations == nil {
		organizations = []*domain.Organization{}
	}
	writeJSON(w, http.StatusOK, Ok(organizations))
}

func (h *OrganizationHandler) create(w http.ResponseWriter, r *http.Request) {
	var req organizationRequest
	if err := readBodyJSON(r, maxAuditBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.Name == "" || req.Domain == "" {
		writeJSON(w, http.StatusBadRequest, Fail("name and domain are required"))
		return
	}

	organizationID, err := h.organizations.CreateOrganization(r.Context(), &domain.Organization{
		Name:   req.Name,
		Domain: req.Domain,
		Status: req.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	org, err := h.organizations.GetOrganization(r.Context(), organizationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(org))
}

func (h *OrganizationHandler) get(w http.ResponseWriter, r *http.Request, organizationID string) {
	org, err := h.organizations.GetOrganization(r.Context(), organizationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(org))
}

func (h *OrganizationHandler) update(w http.ResponseWriter, r *http.Request, organizationID string) {
	var req organizationRequest
	if err := readBodyJSON(r, maxAuditBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	err := h.organizations.UpdateOrganization(r.Context(), organizationID, &domain.Organization{
		Name:   req.Name,
		Domain: req.Domain,
		Status: req.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	org, err := h.organizations.GetOrganization(r.Context(), organizationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(org))
}
