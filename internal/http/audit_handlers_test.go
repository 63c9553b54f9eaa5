package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
	"github.com/CareO-HQ/careo-sub007/internal/repository"
	"github.com/CareO-HQ/careo-sub007/internal/service"
)

const testOrg = "11111111-1111-1111-1111-111111111111"

type testServer struct {
	router    *Router
	templates *repository.MemoryTemplatesRepo
	audits    *repository.MemoryAuditRepo
	residents *repository.MemoryResidentsRepo
	jobs      *repository.MemoryPDFJobsRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()

	ts := &testServer{
		router:    NewRouter(logger),
		templates: repository.NewMemoryTemplatesRepo(),
		audits:    repository.NewMemoryAuditRepo(),
		residents: repository.NewMemoryResidentsRepo(),
		jobs:      repository.NewMemoryPDFJobsRepo(),
	}
	svc := service.NewAuditService(
		ts.templates, ts.audits, ts.audits, ts.residents, ts.jobs,
		nil, false, logger,
	)
	ts.router.RegisterAuditRoutes(NewAuditHandler(svc, ts.templates, logger))
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeResult[T any](t *testing.T, rec *httptest.ResponseRecorder) Result[T] {
	t.Helper()
	var out Result[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (ts *testServer) createTemplate(t *testing.T) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/audit/api/v1/templates?organization_id="+testOrg, map[string]any{
		"name":      "Fire Safety Audit",
		"frequency": "monthly",
		"items": []map[string]string{
			{"item_id": "i1", "label": "Extinguishers serviced"},
			{"item_id": "i2", "label": "Exits clear"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	result := decodeResult[*domain.AuditTemplate](t, rec)
	require.Equal(t, ResultSuccess, result.Code)
	return result.Result.TemplateID
}

func TestTemplateCRUDOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	templateID := ts.createTemplate(t)

	rec := ts.do(t, http.MethodGet, "/audit/api/v1/templates?organization_id="+testOrg, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeResult[[]*domain.AuditTemplate](t, rec)
	require.Len(t, list.Result, 1)

	rec = ts.do(t, http.MethodPut, "/audit/api/v1/templates/"+templateID+"?organization_id="+testOrg, map[string]any{
		"name":      "Fire Safety Audit v2",
		"frequency": "quarterly",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeResult[*domain.AuditTemplate](t, rec)
	require.Equal(t, "Fire Safety Audit v2", updated.Result.Name)

	rec = ts.do(t, http.MethodDelete, "/audit/api/v1/templates/"+templateID+"?organization_id="+testOrg, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/audit/api/v1/templates/"+templateID+"?organization_id="+testOrg, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	failed := decodeResult[any](t, rec)
	require.Equal(t, ResultError, failed.Code)
}

func TestTemplateRequiresOrganizationID(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/audit/api/v1/templates", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTemplateRejectsInvalidFrequency(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/audit/api/v1/templates?organization_id="+testOrg, map[string]any{
		"name":      "Bad",
		"frequency": "weekly",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuditLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	templateID := ts.createTemplate(t)

	// Draft
	rec := ts.do(t, http.MethodPost, "/audit/api/v1/templates/"+templateID+"/draft?organization_id="+testOrg, map[string]any{
		"audited_by": "Jane Murphy",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	draft := decodeResult[*domain.AuditResponse](t, rec)
	require.Equal(t, domain.ResponseDraft, draft.Result.Status)
	require.Len(t, draft.Result.Items, 2)
	responseID := draft.Result.ResponseID

	// Draft call is idempotent
	rec = ts.do(t, http.MethodPost, "/audit/api/v1/templates/"+templateID+"/draft?organization_id="+testOrg, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	again := decodeResult[*domain.AuditResponse](t, rec)
	require.Equal(t, responseID, again.Result.ResponseID)

	// Autosave
	items := []map[string]any{
		{"item_id": "i1", "item_name": "Extinguishers serviced", "status": domain.ItemCompliant},
		{"item_id": "i2", "item_name": "Exits clear", "status": domain.ItemNonCompliant, "notes": "boxes"},
	}
	rec = ts.do(t, http.MethodPut, "/audit/api/v1/responses/"+responseID+"?organization_id="+testOrg, map[string]any{
		"items":  items,
		"status": domain.ResponseInProgress,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Complete
	rec = ts.do(t, http.MethodPost, "/audit/api/v1/responses/"+responseID+"/complete?organization_id="+testOrg, map[string]any{
		"items":         items,
		"overall_notes": "done",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	completed := decodeResult[*domain.AuditResponse](t, rec)
	require.Equal(t, domain.ResponseCompleted, completed.Result.Status)
	require.NotNil(t, completed.Result.CompletedAt)
	require.NotNil(t, completed.Result.NextAuditDue)

	// Autosave after completion is rejected
	rec = ts.do(t, http.MethodPut, "/audit/api/v1/responses/"+responseID+"?organization_id="+testOrg, map[string]any{
		"items": items,
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	// Latest
	rec = ts.do(t, http.MethodGet, "/audit/api/v1/templates/"+templateID+"/latest?organization_id="+testOrg, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	latest := decodeResult[*domain.AuditResponse](t, rec)
	require.Equal(t, responseID, latest.Result.ResponseID)

	// Revision supersedes
	rec = ts.do(t, http.MethodPost, "/audit/api/v1/responses/"+responseID+"/revisions?organization_id="+testOrg, map[string]any{
		"items":      items,
		"audited_by": "Tom",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	revision := decodeResult[*domain.AuditResponse](t, rec)
	require.Equal(t, responseID, revision.Result.Supersedes)

	rec = ts.do(t, http.MethodGet, "/audit/api/v1/templates/"+templateID+"/archived?organization_id="+testOrg, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	archived := decodeResult[[]*domain.AuditResponse](t, rec)
	require.Len(t, archived.Result, 1)
	require.Equal(t, responseID, archived.Result[0].ResponseID)
}

func TestActionPlansOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	templateID := ts.createTemplate(t)

	rec := ts.do(t, http.MethodPost, "/audit/api/v1/templates/"+templateID+"/draft?organization_id="+testOrg, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	draft := decodeResult[*domain.AuditResponse](t, rec)
	responseID := draft.Result.ResponseID

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/audit/api/v1/responses/%s/action-plans?organization_id=%s", responseID, testOrg), map[string]any{
		"description": "service extinguishers",
		"priority":    domain.PriorityHigh,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	plan := decodeResult[*domain.ActionPlan](t, rec)
	require.Equal(t, domain.PriorityHigh, plan.Result.Priority)

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/audit/api/v1/responses/%s/action-plans?organization_id=%s", responseID, testOrg), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	plans := decodeResult[[]*domain.ActionPlan](t, rec)
	require.Len(t, plans.Result, 1)

	rec = ts.do(t, http.MethodPut, "/audit/api/v1/action-plans/"+plan.Result.PlanID+"?organization_id="+testOrg, map[string]any{
		"status":         domain.PlanCompleted,
		"latest_comment": "done",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeResult[*domain.ActionPlan](t, rec)
	require.Equal(t, domain.PlanCompleted, updated.Result.Status)

	rec = ts.do(t, http.MethodDelete, "/audit/api/v1/action-plans/"+plan.Result.PlanID+"?organization_id="+testOrg, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCrossOrganizationAccessFails(t *testing.T) {
	ts := newTestServer(t)
	templateID := ts.createTemplate(t)

	rec := ts.do(t, http.MethodPost, "/audit/api/v1/templates/"+templateID+"/draft?organization_id=other-org", nil)
	require.NotEqual(t, http.StatusOK, rec.Code)
	failed := decodeResult[any](t, rec)
	require.Equal(t, ResultError, failed.Code)
}

func TestHistoryExportOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	templateID := ts.createTemplate(t)

	rec := ts.do(t, http.MethodPost, "/audit/api/v1/templates/"+templateID+"/draft?organization_id="+testOrg, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	draft := decodeResult[*domain.AuditResponse](t, rec)
	rec = ts.do(t, http.MethodPost, "/audit/api/v1/responses/"+draft.Result.ResponseID+"/complete?organization_id="+testOrg, map[string]any{
		"items": []map[string]any{},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/audit/api/v1/templates/"+templateID+"/history.xlsx?organization_id="+testOrg, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	require.NotEmpty(t, rec.Body.Bytes())
}

func TestAllLatestCompletionsOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	templateID := ts.createTemplate(t)

	rec := ts.do(t, http.MethodPost, "/audit/api/v1/templates/"+templateID+"/draft?organization_id="+testOrg, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	draft := decodeResult[*domain.AuditResponse](t, rec)
	rec = ts.do(t, http.MethodPost, "/audit/api/v1/responses/"+draft.Result.ResponseID+"/complete?organization_id="+testOrg, map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/audit/api/v1/completions/latest?organization_id="+testOrg, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	latest := decodeResult[[]*domain.AuditResponse](t, rec)
	require.Len(t, latest.Result, 1)
}
