package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
	"github.com/CareO-HQ/careo-sub007/internal/repository"
)

type fakeRenderer struct {
	out []byte
	err error
}

func (r *fakeRenderer) Render(_ context.Context, _ string) ([]byte, error) {
	return r.out, r.err
}

func (r *fakeRenderer) Close() error { return nil }

func newPDFServer(t *testing.T, renderer *fakeRenderer, env, token string) (*Router, *repository.MemoryAssessmentsRepo) {
	t.Helper()
	logger := zap.NewNop()
	assessments := repository.NewMemoryAssessmentsRepo()
	router := NewRouter(logger)
	router.RegisterPDFRoutes(NewPDFHandler(renderer, assessments, token, env, logger))
	return router, assessments
}

func postJSON(t *testing.T, router *Router, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAdmissionPDFContract(t *testing.T) {
	router, _ := newPDFServer(t, &fakeRenderer{out: []byte("%PDF-1.4 fake")}, "development", "")

	rec := postJSON(t, router, "/api/pdf/admission", map[string]any{
		"firstName": "Mary",
		"lastName":  "Black",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), `attachment`)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "admission-assessment-mary-black.pdf")
	require.NotEmpty(t, rec.Body.Bytes())
}

func TestAdmissionPDFMissingDataReturns400(t *testing.T) {
	router, _ := newPDFServer(t, &fakeRenderer{out: []byte("pdf")}, "development", "")

	rec := postJSON(t, router, "/api/pdf/admission", map[string]any{}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body pdfErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Error)
}

func TestPDFAuthInProduction(t *testing.T) {
	router, _ := newPDFServer(t, &fakeRenderer{out: []byte("pdf")}, "production", "secret-token")
	payload := map[string]any{"firstName": "Mary", "lastName": "Black"}

	// No token
	rec := postJSON(t, router, "/api/pdf/admission", payload, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong token
	rec = postJSON(t, router, "/api/pdf/admission", payload, map[string]string{"Authorization": "Bearer wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Correct token
	rec = postJSON(t, router, "/api/pdf/admission", payload, map[string]string{"Authorization": "Bearer secret-token"})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPDFAuthBypassedInDevelopment(t *testing.T) {
	router, _ := newPDFServer(t, &fakeRenderer{out: []byte("pdf")}, "development", "secret-token")

	rec := postJSON(t, router, "/api/pdf/admission", map[string]any{
		"firstName": "Mary", "lastName": "Black",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRendererFailureReturns500(t *testing.T) {
	router, _ := newPDFServer(t, &fakeRenderer{err: errors.New("browser launch failed")}, "development", "")

	rec := postJSON(t, router, "/api/pdf/admission", map[string]any{
		"firstName": "Mary", "lastName": "Black",
	}, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body pdfErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "pdf rendering failed", body.Error)
	require.Contains(t, body.Details, "browser launch failed")
}

func TestFetchRouteReturns404ForUnknownAssessment(t *testing.T) {
	router, _ := newPDFServer(t, &fakeRenderer{out: []byte("pdf")}, "development", "")

	rec := postJSON(t, router, "/api/pdf/infection-prevention", map[string]any{
		"assessment_id":   "missing",
		"organization_id": testOrg,
	}, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFetchRouteRendersStoredAssessment(t *testing.T) {
	router, assessments := newPDFServer(t, &fakeRenderer{out: []byte("%PDF-1.4 fake")}, "development", "")

	data, err := json.Marshal(map[string]any{"handHygiene": "compliant"})
	require.NoError(t, err)
	assessmentID, err := assessments.CreateAssessment(context.Background(), testOrg, &domain.Assessment{
		FormType: domain.FormInfectionPrevention,
		Data:     data,
	})
	require.NoError(t, err)

	rec := postJSON(t, router, "/api/pdf/infection-prevention", map[string]any{
		"assessment_id":   assessmentID,
		"organization_id": testOrg,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "infection-prevention.pdf")
}

func TestPreAdmissionAcceptsLegacyFormID(t *testing.T) {
	router, assessments := newPDFServer(t, &fakeRenderer{out: []byte("pdf")}, "development", "")

	assessmentID, err := assessments.CreateAssessment(context.Background(), testOrg, &domain.Assessment{
		FormType: domain.FormPreAdmission,
		Data:     json.RawMessage(`{"referrer":"hospital"}`),
	})
	require.NoError(t, err)

	rec := postJSON(t, router, "/api/pdf/pre-admission", map[string]any{
		"form_id":         assessmentID,
		"organization_id": testOrg,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestFetchRouteMissingIDReturns400(t *testing.T) {
	router, _ := newPDFServer(t, &fakeRenderer{out: []byte("pdf")}, "development", "")

	rec := postJSON(t, router, "/api/pdf/moving-handling", map[string]any{
		"organization_id": testOrg,
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownPDFRouteReturns404(t *testing.T) {
	router, _ := newPDFServer(t, &fakeRenderer{out: []byte("pdf")}, "development", "")
	rec := postJSON(t, router, "/api/pdf/unknown-form", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
