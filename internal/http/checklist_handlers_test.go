package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CareO-HQ/careo-sub007/internal/store"
)

func newChecklistServer(t *testing.T) (*Router, *store.MemoryKV) {
	t.Helper()
	logger := zap.NewNop()
	kv := store.NewMemoryKV()
	router := NewRouter(logger)
	router.RegisterChecklistRoutes(NewChecklistHandler(kv, logger))
	return router, kv
}

func TestHomeChecklistRoundTrip(t *testing.T) {
	router, _ := newChecklistServer(t)

	state := HomeChecklistState{
		RowStatuses:  map[string]string{"0": "compliant", "1": "pending"},
		AuditorNames: map[string]string{"0": "Jane"},
	}
	raw, err := json.Marshal(state)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/audit/api/v1/checklists/home/environment?organization_id="+testOrg, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/audit/api/v1/checklists/home/environment?organization_id="+testOrg, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result Result[HomeChecklistState]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, state.RowStatuses, result.Result.RowStatuses)
	require.Equal(t, state.AuditorNames, result.Result.AuditorNames)
}

func TestHomeChecklistAbsentKeyDefaults(t *testing.T) {
	router, _ := newChecklistServer(t)

	req := httptest.NewRequest(http.MethodGet, "/audit/api/v1/checklists/home/kitchen?organization_id="+testOrg, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result Result[HomeChecklistState]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotNil(t, result.Result.RowStatuses)
	require.Empty(t, result.Result.RowStatuses)
	require.NotNil(t, result.Result.AuditorNames)
	require.Empty(t, result.Result.AuditorNames)
}

func TestHomeChecklistCorruptValueDegrades(t *testing.T) {
	router, kv := newChecklistServer(t)
	require.NoError(t, kv.Set(context.Background(), "home-audit:"+testOrg+":garden", "{not json", 0))

	req := httptest.NewRequest(http.MethodGet, "/audit/api/v1/checklists/home/garden?organization_id="+testOrg, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result Result[HomeChecklistState]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Empty(t, result.Result.RowStatuses)
}

func TestHomeChecklistScopedByOrganizationAndCategory(t *testing.T) {
	router, kv := newChecklistServer(t)

	state := `{"rowStatuses":{"0":"compliant"},"auditorNames":{}}`
	require.NoError(t, kv.Set(context.Background(), "home-audit:"+testOrg+":environment", state, 0))

	// A different category under the same organization is empty.
	req := httptest.NewRequest(http.MethodGet, "/audit/api/v1/checklists/home/medication?organization_id="+testOrg, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var result Result[HomeChecklistState]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Empty(t, result.Result.RowStatuses)

	// A different organization with the same category is empty too.
	req = httptest.NewRequest(http.MethodGet, "/audit/api/v1/checklists/home/environment?organization_id=other", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Empty(t, result.Result.RowStatuses)
}

func TestHomeChecklistCategoryListing(t *testing.T) {
	router, kv := newChecklistServer(t)

	state := `{"rowStatuses":{},"auditorNames":{}}`
	require.NoError(t, kv.Set(context.Background(), "home-audit:"+testOrg+":medication", state, 0))
	require.NoError(t, kv.Set(context.Background(), "home-audit:"+testOrg+":environment", state, 0))
	require.NoError(t, kv.Set(context.Background(), "home-audit:other-org:kitchen", state, 0))

	req := httptest.NewRequest(http.MethodGet, "/audit/api/v1/checklists/home?organization_id="+testOrg, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result Result[[]string]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, []string{"environment", "medication"}, result.Result)
}

func TestResidentChecklistRoundTrip(t *testing.T) {
	router, _ := newChecklistServer(t)

	state := ResidentChecklistState{
		RowStatuses:      map[string]string{"0": "checked"},
		AuditorNames:     map[string]string{"0": "Tom"},
		LastAuditedDates: map[string]string{"0": "2026-02-01"},
		DueDates:         map[string]string{"0": "2026-03-03"},
	}
	raw, err := json.Marshal(state)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/audit/api/v1/checklists/resident/res-1", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/audit/api/v1/checklists/resident/res-1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result Result[ResidentChecklistState]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, state, result.Result)
}

func TestResidentChecklistAbsentKeyDefaults(t *testing.T) {
	router, _ := newChecklistServer(t)

	req := httptest.NewRequest(http.MethodGet, "/audit/api/v1/checklists/resident/unknown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result Result[ResidentChecklistState]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotNil(t, result.Result.LastAuditedDates)
	require.Empty(t, result.Result.LastAuditedDates)
	require.NotNil(t, result.Result.DueDates)
	require.Empty(t, result.Result.DueDates)
}
