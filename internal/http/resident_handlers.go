package httpapi

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
	"github.com/CareO-HQ/careo-sub007/internal/repository"
)

// ResidentHandler resident record CRUD under /admin/api/v1/residents.
type ResidentHandler struct {
	residents repository.ResidentsRepository
	logger    *zap.Logger
}

func NewResidentHandler(residents repository.ResidentsRepository, logger *zap.Logger) *ResidentHandler {
	return &ResidentHandler{residents: residents, logger: logger}
}

type residentRequest struct {
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	RoomNumber    string     `json:"room_number"`
	AdmissionDate *time.Time `json:"admission_date"`
	DischargeDate *time.Time `json:"discharge_date"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes"`
}

type residentListResponse struct {
	Items []*domain.Resident `json:"items"`
	Total int                `json:"total"`
	Page  int                `json:"page"`
	Size  int                `json:"size"`
}

func (req *residentRequest) toDomain() *domain.Resident {
	return &domain.Resident{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		DateOfBirth:   req.DateOfBirth,
		RoomNumber:    req.RoomNumber,
		AdmissionDate: req.AdmissionDate,
		DischargeDate: req.DischargeDate,
		Status:        req.Status,
		Notes:         req.Notes,
	}
}

// Handle routes /admin/api/v1/residents and /admin/api/v1/residents/{id}.
func (h *ResidentHandler) Handle(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/admin/api/v1/residents")
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

func (h *ResidentHandler) list(w http.ResponseWriter, r *http.Request, orgID string) {
	q := r.URL.Query()
	filters := repository.ResidentFilters{
		Status: q.Get("status"),
		Search: q.Get("search"),
	}
	page := parseInt(q.Get("page"), 1)
	size := parseInt(q.Get("size"), 20)

	residents, total, err := h.residents.ListResidents(r.Context(), orgID, filters, page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	if residents == nil {
		residents = []*domain.Resident{}
	}
	writeJSON(w, http.StatusOK, Ok(residentListResponse{
		Items: residents,
		Total: total,
		Page:  page,
		Size:  size,
	}))
}

func (h *ResidentHandler) create(w http.ResponseWriter, r *http.Request, orgID string) {
	var req residentRequest
	if err := readBodyJSON(r, maxAuditBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.FirstName == "" && req.LastName == "" {
		writeJSON(w, http.StatusBadRequest, Fail("first_name or last_name is required"))
		return
	}

	residentID, err := h.residents.CreateResident(r.Context(), orgID, req.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}
	resident, err := h.residents.GetResident(r.Context(), orgID, residentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(resident))
}

func (h *ResidentHandler) get(w http.ResponseWriter, r *http.Request, orgID, residentID string) {
	resident, err := h.residents.GetResident(r.Context(), orgID, residentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resident))
}

func (h *ResidentHandler) update(w http.ResponseWriter, r *http.Request, orgID, residentID string) {
	var req residentRequest
	if err := readBodyJSON(r, maxAuditBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	if err := h.residents.UpdateResident(r.Context(), orgID, residentID, req.toDomain()); err != nil {
		writeError(w, err)
		return
	}
	resident, err := h.residents.GetResident(r.Context(), orgID, residentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resident))
}

func (h *ResidentHandler) delete(w http.ResponseWriter, r *http.Request, orgID, residentID string) {
	if err := h.residents.DeleteResident(r.Context(), orgID, residentID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"deleted": residentID}))
}
