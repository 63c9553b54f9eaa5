package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/CareO-HQ/careo-sub007/internal/pdf"
	"github.com/CareO-HQ/careo-sub007/internal/repository"
)

// PDFHandler the form-to-PDF bridge under /api/pdf/.
//
// Inline routes carry the whole form in the request body; fetch routes carry
// an id and the handler loads the stored assessment itself. Responses are
// raw PDF bytes, not the Result envelope, and errors use the {error, details}
// shape the frontend's download code expects.
type PDFHandler struct {
	renderer    pdf.Renderer
	assessments repository.AssessmentsRepository
	authToken   string
	env         string
	logger      *zap.Logger
}

func NewPDFHandler(renderer pdf.Renderer, assessments repository.AssessmentsRepository, authToken, env string, logger *zap.Logger) *PDFHandler {
	return &PDFHandler{
		renderer:    renderer,
		assessments: assessments,
		authToken:   authToken,
		env:         env,
		logger:      logger,
	}
}

type pdfErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writePDFError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, pdfErrorBody{Error: message, Details: details})
}

// fetchRequest body of the fetch-by-id routes. form_id is the legacy alias
// the pre-admission route still accepts.
type fetchRequest struct {
	AssessmentID   string `json:"assessment_id"`
	FormID         string `json:"form_id"`
	OrganizationID string `json:"organization_id"`
}

func (f *fetchRequest) id() string {
	if f.AssessmentID != "" {
		return f.AssessmentID
	}
	return f.FormID
}

// Handle routes POST /api/pdf/{form}.
func (h *PDFHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.authorized(r) {
		writePDFError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid bearer token")
		return
	}

	form := strings.TrimPrefix(r.URL.Path, "/api/pdf/")
	switch form {
	case "admission":
		var req pdf.AdmissionForm
		h.renderInline(w, r, &req, func() (string, string) { return req.HTML(), req.Filename() })
	case "dnacpr":
		var req pdf.DNACPRForm
		h.renderInline(w, r, &req, func() (string, string) { return req.HTML(), req.Filename() })
	case "peep":
		var req pdf.PEEPForm
		h.renderInline(w, r, &req, func() (string, string) { return req.HTML(), req.Filename() })
	case "skin-integrity":
		var req pdf.SkinIntegrityForm
		h.renderInline(w, r, &req, func() (string, string) { return req.HTML(), req.Filename() })
	case "nhs-report":
		var req pdf.NHSReportForm
		h.renderInline(w, r, &req, func() (string, string) { return req.HTML(), req.Filename() })
	case "pre-admission", "infection-prevention", "moving-handling":
		h.renderStored(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// inlineForm is what every hand-coded payload type provides.
type inlineForm interface {
	Validate() error
}

func (h *PDFHandler) renderInline(w http.ResponseWriter, r *http.Request, form inlineForm, build func() (html, filename string)) {
	if err := readBodyJSON(r, maxAuditBody, form); err != nil {
		writePDFError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := form.Validate(); err != nil {
		writePDFError(w, http.StatusBadRequest, "missing data", err.Error())
		return
	}

	html, filename := build()
	h.send(w, r, html, filename)
}

func (h *PDFHandler) renderStored(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := readBodyJSON(r, maxAuditBody, &req); err != nil {
		writePDFError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.id() == "" || req.OrganizationID == "" {
		writePDFError(w, http.StatusBadRequest, "missing data", "assessment_id and organization_id are required")
		return
	}

	assessment, err := h.assessments.GetAssessment(r.Context(), req.OrganizationID, req.id())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writePDFError(w, http.StatusNotFound, "assessment not found", req.id())
			return
		}
		writePDFError(w, http.StatusInternalServerError, "failed to load assessment", err.Error())
		return
	}

	h.send(w, r, pdf.AssessmentHTML(assessment), pdf.AssessmentFilename(assessment))
}

func (h *PDFHandler) send(w http.ResponseWriter, r *http.Request, html, filename string) {
	if h.renderer == nil {
		writePDFError(w, http.StatusServiceUnavailable, "pdf generation disabled", "no renderer configured")
		return
	}
	data, err := h.renderer.Render(r.Context(), html)
	if err != nil {
		h.logger.Error("pdf rendering failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writePDFError(w, http.StatusInternalServerError, "pdf rendering failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// authorized checks the bearer token. Development mode skips the check so
// local frontends work without a shared secret.
func (h *PDFHandler) authorized(r *http.Request) bool {
	if h.env == "development" {
		return true
	}
	if h.authToken == "" {
		return false
	}
	auth := r.Header.Get("Authorization")
	return auth == "Bearer "+h.authToken
}
