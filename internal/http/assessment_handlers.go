package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
	"github.com/CareO-HQ/careo-sub007/internal/repository"
)

// AssessmentHandler stored clinical form CRUD under
// /admin/api/v1/assessments. The data payload is opaque JSON; each form type
// keeps its own shape.
type AssessmentHandler struct {
	assessments repository.AssessmentsRepository
	logger      *zap.Logger
}

func NewAssessmentHandler(assessments repository.AssessmentsRepository, logger *zap.Logger) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments, logger: logger}
}

type assessmentRequest struct {
	ResidentID string          `json:"resident_id"`
	FormType   string          `json:"form_type"`
	Data       json.RawMessage `json:"data"`
	CreatedBy  string          `json:"created_by"`
}

// Handle routes /admin/api/v1/assessments and /admin/api/v1/assessments/{id}.
func (h *AssessmentHandler) Handle(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/admin/api/v1/assessments")
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

func (h *AssessmentHandler) list(w http.ResponseWriter, r *http.Request, orgID string) {
	q := r.URL.Query()
	filters := repository.AssessmentFilters{
		ResidentID: q.Get("resident_id"),
		FormType:   q.Get("form_type"),
	}

	assessments, err := h.assessments.ListAssessments(r.Context(), orgID, filters)
	if err != nil {
		writeError(w, err)
		return
	}
	if assessments == nil {
		assessments = []*domain.Assessment{}
	}
	writeJSON(w, http.StatusOK, Ok(assessments))
}

func (h *AssessmentHandler) create(w http.ResponseWriter, r *http.Request, orgID string) {
	var req assessmentRequest
	if err := readBodyJSON(r, maxAuditBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.FormType == "" {
		writeJSON(w, http.StatusBadRequest, Fail("form_type is required"))
		return
	}

	assessmentID, err := h.assessments.CreateAssessment(r.Context(), orgID, &domain.Assessment{
		ResidentID: req.ResidentID,
		FormType:   req.FormType,
		Data:       req.Data,
		CreatedBy:  req.CreatedBy,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	assessment, err := h.assessments.GetAssessment(r.Context(), orgID, assessmentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(assessment))
}

func (h *AssessmentHandler) get(w http.ResponseWriter, r *http.Request, orgID, assessmentID string) {
	assessment, err := h.assessments.GetAssessment(r.Context(), orgID, assessmentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(assessment))
}

func (h *AssessmentHandler) update(w http.ResponseWriter, r *http.Request, orgID, assessmentID string) {
	var req assessmentRequest
	if err := readBodyJSON(r, maxAuditBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	err := h.assessments.UpdateAssessment(r.Context(), orgID, assessmentID, &domain.Assessment{Data: req.Data})
	if err != nil {
		writeError(w, err)
		return
	}
	assessment, err := h.assessments.GetAssessment(r.Context(), orgID, assessmentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(assessment))
}

func (h *AssessmentHandler) delete(w http.ResponseWriter, r *http.Request, orgID, assessmentID string) {
	if err := h.assessments.DeleteAssessment(r.Context(), orgID, assessmentID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"deleted": assessmentID}))
}
