package httpapi

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
	"github.com/CareO-HQ/careo-sub007/internal/repository"
)

// IncidentHandler incident / hospital-transfer log CRUD under
// /admin/api/v1/incidents.
type IncidentHandler struct {
	incidents repository.IncidentsRepository
	logger    *zap.Logger
}

func NewIncidentHandler(incidents repository.IncidentsRepository, logger *zap.Logger) *IncidentHandler {
	return &IncidentHandler{incidents: incidents, logger: logger}
}

type incidentRequest struct {
	ResidentID   string     `json:"resident_id"`
	IncidentType string     `json:"incident_type"`
	Severity     string     `json:"severity"`
	Description  string     `json:"description"`
	Location     string     `json:"location"`
	OccurredAt   time.Time  `json:"occurred_at"`
	ReportedBy   string     `json:"reported_by"`
	ReportedAt   *time.Time `json:"reported_at"`
}

type incidentListResponse struct {
	Items []*domain.Incident `json:"items"`
	Total int                `json:"total"`
	Page  int                `json:"page"`
	Size  int                `json:"size"`
}

func (req *incidentRequest) toDomain() *domain.Incident {
	return &domain.Incident{
		ResidentID:   req.ResidentID,
		IncidentType: req.IncidentType,
		Severity:     req.Severity,
		Description:  req.Description,
		Location:     req.Location,
		OccurredAt:   req.OccurredAt,
		ReportedBy:   req.ReportedBy,
		ReportedAt:   req.ReportedAt,
	}
}

// Handle routes /admin/api/v1/incidents and /admin/api/v1/incidents/{id}.
func (h *IncidentHandler) Handle(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/admin/api/v1/incidents")
	rest = strings.TrimPrefix(rest, "/")

	orgID := organizationID(r)
	if orgID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("organization_id is required"))
		return
	}

	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r, orgID)
		case http.MethodPost:
			h.create(w, r, orgID)
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
		h.get(w, r, orgID, rest)
	case http.MethodPut:
		h.update(w, r, orgID, rest)
	case http.MethodDelete:
		h.delete(w, r, orgID, rest)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *IncidentHandler) list(w http.ResponseWriter, r *http.Request, orgID string) {
	q := r.URL.Query()
	filters := repository.IncidentFilters{
		ResidentID:   q.Get("resident_id"),
		IncidentType: q.Get("incident_type"),
		Severity:     q.Get("severity"),
	}
	page := parseInt(q.Get("page"), 1)
	size := parseInt(q.Get("size"), 20)

	incidents, total, err := h.incidents.ListIncidents(r.Context(), orgID, filters, page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	if incidents == nil {
		incidents = []*domain.Incident{}
	}
	writeJSON(w, http.StatusOK, Ok(incidentListResponse{
		Items: incidents,
		Total: total,
		Page:  page,
		Size:  size,
	}))
}

func (h *IncidentHandler) create(w http.ResponseWriter, r *http.Request, orgID string) {
	var req incidentRequest
	if err := readBodyJSON(r, maxAuditBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.IncidentType == "" || req.Description == "" || req.OccurredAt.IsZero() {
		writeJSON(w, http.StatusBadRequest, Fail("incident_type, description and occurred_at are required"))
		return
	}

	incidentID, err := h.incidents.CreateIncident(r.Context(), orgID, req.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}
	incident, err := h.incidents.GetIncident(r.Context(), orgID, incidentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(incident))
}

func (h *IncidentHandler) get(w http.ResponseWriter, r *http.Request, orgID, incidentID string) {
	incident, err := h.incidents.GetIncident(r.Context(), orgID, incidentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(incident))
}

func (h *IncidentHandler) update(w http.ResponseWriter, r *http.Request, orgID, incidentID string) {
	var req incidentRequest
	if err := readBodyJSON(r, maxAuditBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	if err := h.incidents.UpdateIncident(r.Context(), orgID, incidentID, req.toDomain()); err != nil {
		writeError(w, err)
		return
	}
	incident, err := h.incidents.GetIncident(r.Context(), orgID, incidentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(incident))
}

func (h *IncidentHandler) delete(w http.ResponseWriter, r *http.Request, orgID, incidentID string) {
	if err := h.incidents.DeleteIncident(r.Context(), orgID, incidentID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"deleted": incidentID}))
}
