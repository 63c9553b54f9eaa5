package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
	"github.com/CareO-HQ/careo-sub007/internal/export"
	"github.com/CareO-HQ/careo-sub007/internal/repository"
	"github.com/CareO-HQ/careo-sub007/internal/service"
)

const maxAuditBody = 1 << 20 // 1 MiB

// AuditHandler templates, completions, revisions and action plans.
type AuditHandler struct {
	svc       *service.AuditService
	templates repository.TemplatesRepository
	logger    *zap.Logger
}

func NewAuditHandler(svc *service.AuditService, templates repository.TemplatesRepository, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{svc: svc, templates: templates, logger: logger}
}

type templateRequest struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Items       []domain.TemplateItem `json:"items"`
	Frequency   string                `json:"frequency"`
	TeamID      string                `json:"team_id"`
	CreatedBy   string                `json:"created_by"`
}

type draftRequest struct {
	ResidentID string `json:"resident_id"`
	AuditedBy  string `json:"audited_by"`
}

type autosaveRequest struct {
	Items        []domain.ResponseItem `json:"items"`
	OverallNotes string                `json:"overall_notes"`
	Status       string                `json:"status"`
}

type revisionRequest struct {
	Items        []domain.ResponseItem `json:"items"`
	OverallNotes string                `json:"overall_notes"`
	AuditedBy    string                `json:"audited_by"`
}

type planRequest struct {
	ResponseID    string     `json:"response_id"`
	Description   string     `json:"description"`
	AssignedTo    string     `json:"assigned_to"`
	DueDate       *time.Time `json:"due_date"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	LatestComment string     `json:"latest_comment"`
}

// Templates routes /audit/api/v1/templates and everything nested under an id.
func (h *AuditHandler) Templates(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/audit/api/v1/templates")
	rest = strings.TrimPrefix(rest, "/")

	orgID := organizationID(r)
	if orgID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("organization_id is required"))
		return
	}

	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			h.listTemplates(w, r, orgID)
		case http.MethodPost:
			h.createTemplate(w, r, orgID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	parts := strings.SplitN(rest, "/", 2)
	templateID := parts[0]
	sub := ""
	if len(parts) == 2 {
		sub = parts[1]
	}

	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.getTemplate(w, r, orgID, templateID)
		case http.MethodPut:
			h.updateTemplate(w, r, orgID, templateID)
		case http.MethodDelete:
			h.deleteTemplate(w, r, orgID, templateID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "draft":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.getOrCreateDraft(w, r, orgID, templateID)
	case "latest":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.latestCompletion(w, r, orgID, templateID)
	case "history":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.completionHistory(w, r, orgID, templateID)
	case "archived":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.archivedCompletions(w, r, orgID, templateID)
	case "history.xlsx":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.exportHistory(w, r, orgID, templateID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *AuditHandler) listTemplates(w http.ResponseWriter, r *http.Request, orgID string) {
	templates, err := h.templates.ListTemplates(r.Context(), orgID)
	if err != nil {
		writeError(w, err)
		return
	}
	if templates == nil {
		templates = []*domain.AuditTemplate{}
	}
	writeJSON(w, http.StatusOK, Ok(templates))
}

func (h *AuditHandler) createTemplate(w http.ResponseWriter, r *http.Request, orgID string) {
	var req templateRequest
	if err := readBodyJSON(r, maxAuditBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, Fail("name is required"))
		return
	}
	if !domain.ValidFrequency(req.Frequency) {
		writeJSON(w, http.StatusBadRequest, Fail(fmt.Sprintf("invalid frequency %q", req.Frequency)))
		return
	}

	templateID, err := h.templates.CreateTemplate(r.Context(), orgID, &domain.AuditTemplate{
		Name:        req.Name,
		Description: req.Description,
		Items:       req.Items,
		Frequency:   req.Frequency,
		TeamID:      req.TeamID,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	template, err := h.templates.GetTemplate(r.Context(), orgID, templateID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(template))
}

func (h *AuditHandler) getTemplate(w http.ResponseWriter, r *http.Request, orgID, templateID string) {
	template, err := h.templates.GetTemplate(r.Context(), orgID, templateID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(template))
}

func (h *AuditHandler) updateTemplate(w http.ResponseWriter, r *http.Request, orgID, templateID string) {
	var req templateRequest
	if err := readBodyJSON(r, maxAuditBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	err := h.templates.UpdateTemplate(r.Context(), orgID, templateID, &domain.AuditTemplate{
		Name:        req.Name,
		Description: req.Description,
		Items:       req.Items,
		Frequency:   req.Frequency,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	template, err := h.templates.GetTemplate(r.Context(), orgID, templateID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(template))
}

func (h *AuditHandler) deleteTemplate(w http.ResponseWriter, r *http.Request, orgID, templateID string) {
	// Completions referencing the template are retained.
	if err := h.templates.DeleteTemplate(r.Context(), orgID, templateID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"deleted": templateID}))
}

func (h *AuditHandler) getOrCreateDraft(w http.ResponseWriter, r *http.Request, orgID, templateID string) {
	var req draftRequest
	if err := readBodyJSON(r, maxAuditBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	draft, err := h.svc.GetOrCreateDraft(r.Context(), orgID, templateID, req.ResidentID, req.AuditedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(draft))
}

func (h *AuditHandler) latestCompletion(w http.ResponseWriter, r *http.Request, orgID, templateID string) {
	latest, err := h.svc.LatestCompletion(r.Context(), orgID, templateID, r.URL.Query().Get("resident_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(latest))
}

func (h *AuditHandler) completionHistory(w http.ResponseWriter, r *http.Request, orgID, templateID string) {
	limit := parseInt(r.URL.Query().Get("limit"), 0)
	history, err := h.svc.CompletionHistory(r.Context(), orgID, templateID, r.URL.Query().Get("resident_id"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(history))
}

func (h *AuditHandler) archivedCompletions(w http.ResponseWriter, r *http.Request, orgID, templateID string) {
	archived, err := h.svc.ArchivedCompletions(r.Context(), orgID, templateID, r.URL.Query().Get("resident_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if archived == nil {
		archived = []*domain.AuditResponse{}
	}
	writeJSON(w, http.StatusOK, Ok(archived))
}

func (h *AuditHandler) exportHistory(w http.ResponseWriter, r *http.Request, orgID, templateID string) {
	template, err := h.templates.GetTemplate(r.Context(), orgID, templateID)
	if err != nil {
		writeError(w, err)
		return
	}
	rows, err := h.svc.CompletedForTemplate(r.Context(), orgID, templateID, r.URL.Query().Get("resident_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := export.GenerateAuditHistory(template, rows)
	if err != nil {
		h.logger.Error("failed to generate audit history export",
			zap.String("template_id", templateID),
			zap.Error(err))
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-history.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Responses routes /audit/api/v1/responses/{id} and nested operations.
func (h *AuditHandler) Responses(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/audit/api/v1/responses/")

	orgID := organizationID(r)
	if orgID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("organization_id is required"))
		return
	}

	parts := strings.SplitN(rest, "/", 2)
	responseID := parts[0]
	if responseID == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	sub := ""
	if len(parts) == 2 {
		sub = parts[1]
	}

	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.getResponse(w, r, orgID, responseID)
		case http.MethodPut:
			h.autosaveResponse(w, r, orgID, responseID)
		case http.MethodDelete:
			h.deleteResponse(w, r, orgID, responseID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "complete":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.completeResponse(w, r, orgID, responseID)
	case "revisions":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.createRevision(w, r, orgID, responseID)
	case "action-plans":
		switch r.Method {
		case http.MethodGet:
			h.listActionPlans(w, r, orgID, responseID)
		case http.MethodPost:
			h.createActionPlan(w, r, orgID, responseID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *AuditHandler) getResponse(w http.ResponseWriter, r *http.Request, orgID, responseID string) {
	response, err := h.svc.GetResponse(r.Context(), orgID, responseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(response))
}

func (h *AuditHandler) autosaveResponse(w http.ResponseWriter, r *http.Request, orgID, responseID string) {
	var req autosaveRequest
	if err := readBodyJSON(r, maxAuditBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	if err := h.svc.UpdateResponse(r.Context(), orgID, responseID, req.Items, req.OverallNotes, req.Status); err != nil {
		writeError(w, err)
		return
	}
	response, err := h.svc.GetResponse(r.Context(), orgID, responseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(response))
}

func (h *AuditHandler) completeResponse(w http.ResponseWriter, r *http.Request, orgID, responseID string) {
	var req autosaveRequest
	if err := readBodyJSON(r, maxAuditBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	completed, err := h.svc.CompleteAudit(r.Context(), orgID, responseID, req.Items, req.OverallNotes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(completed))
}

func (h *AuditHandler) createRevision(w http.ResponseWriter, r *http.Request, orgID, responseID string) {
	var req revisionRequest
	if err := readBodyJSON(r, maxAuditBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	revision, err := h.svc.CreateRevision(r.Context(), orgID, responseID, req.Items, req.OverallNotes, req.AuditedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(revision))
}

func (h *AuditHandler) deleteResponse(w http.ResponseWriter, r *http.Request, orgID, responseID string) {
	if err := h.svc.DeleteResponse(r.Context(), orgID, responseID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"deleted": responseID}))
}

func (h *AuditHandler) listActionPlans(w http.ResponseWriter, r *http.Request, orgID, responseID string) {
	plans, err := h.svc.ListActionPlans(r.Context(), orgID, responseID)
	if err != nil {
		writeError(w, err)
		return
	}
	if plans == nil {
		plans = []*domain.ActionPlan{}
	}
	writeJSON(w, http.StatusOK, Ok(plans))
}

func (h *AuditHandler) createActionPlan(w http.ResponseWriter, r *http.Request, orgID, responseID string) {
	var req planRequest
	if err := readBodyJSON(r, maxAuditBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	plan, err := h.svc.CreateActionPlan(r.Context(), orgID, &domain.ActionPlan{
		ResponseID:    responseID,
		Description:   req.Description,
		AssignedTo:    req.AssignedTo,
		DueDate:       req.DueDate,
		Priority:      req.Priority,
		Status:        req.Status,
		LatestComment: req.LatestComment,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(plan))
}

// ActionPlans routes /audit/api/v1/action-plans/{id}.
func (h *AuditHandler) ActionPlans(w http.ResponseWriter, r *http.Request) {
	planID := strings.TrimPrefix(r.URL.Path, "/audit/api/v1/action-plans/")
	if planID == "" || strings.Contains(planID, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	orgID := organizationID(r)
	if orgID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("organization_id is required"))
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req planRequest
		if err := readBodyJSON(r, maxAuditBody, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		plan, err := h.svc.UpdateActionPlan(r.Context(), orgID, planID, &domain.ActionPlan{
			Description:   req.Description,
			AssignedTo:    req.AssignedTo,
			DueDate:       req.DueDate,
			Priority:      req.Priority,
			Status:        req.Status,
			LatestComment: req.LatestComment,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(plan))
	case http.MethodDelete:
		if err := h.svc.DeleteActionPlan(r.Context(), orgID, planID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]string{"deleted": planID}))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Completions routes /audit/api/v1/completions/latest.
func (h *AuditHandler) Completions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	orgID := organizationID(r)
	if orgID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("organization_id is required"))
		return
	}

	latest, err := h.svc.AllLatestCompletions(r.Context(), orgID)
	if err != nil {
		writeError(w, err)
		return
	}
	if latest == nil {
		latest = []*domain.AuditResponse{}
	}
	writeJSON(w, http.StatusOK, Ok(latest))
}
