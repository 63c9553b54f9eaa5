package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router uses the standard library http.ServeMux to avoid a third-party
// routing dependency. Handlers do their own method checks and nested path
// parsing.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler supports the http.Handler interface (pprof etc.)
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterAuditRoutes templates, completions, revisions, action plans and
// the Excel history export.
func (r *Router) RegisterAuditRoutes(h *AuditHandler) {
	r.Handle("/audit/api/v1/templates", h.Templates)
	r.Handle("/audit/api/v1/templates/", h.Templates)
	r.Handle("/audit/api/v1/responses/", h.Responses)
	r.Handle("/audit/api/v1/action-plans/", h.ActionPlans)
	r.Handle("/audit/api/v1/completions/latest", h.Completions)
}

// RegisterChecklistRoutes the KV-backed checklist state cache.
func (r *Router) RegisterChecklistRoutes(h *ChecklistHandler) {
	r.Handle("/audit/api/v1/checklists/home", h.Categories)
	r.Handle("/audit/api/v1/checklists/home/", h.Home)
	r.Handle("/audit/api/v1/checklists/resident/", h.Resident)
}

// RegisterPDFRoutes the form-to-PDF bridge.
func (r *Router) RegisterPDFRoutes(h *PDFHandler) {
	r.Handle("/api/pdf/", h.Handle)
}

// RegisterAdminRoutes resident, incident, assessment and organization CRUD.
func (r *Router) RegisterAdminRoutes(residents *ResidentHandler, incidents *IncidentHandler, assessments *AssessmentHandler, organizations *OrganizationHandler) {
	r.Handle("/admin/api/v1/residents", residents.Handle)
	r.Handle("/admin/api/v1/residents/", residents.Handle)
	r.Handle("/admin/api/v1/incidents", incidents.Handle)
	r.Handle("/admin/api/v1/incidents/", incidents.Handle)
	r.Handle("/admin/api/v1/assessments", assessments.Handle)
	r.Handle("/admin/api/v1/assessments/", assessments.Handle)
	r.Handle("/admin/api/v1/organizations", organizations.Handle)
	r.Handle("/admin/api/v1/organizations/", organizations.Handle)
}

// RegisterFileRoutes stored PDF downloads.
func (r *Router) RegisterFileRoutes(h *FilesHandler) {
	r.Handle("/files/pdfs/", h.Handle)
}
