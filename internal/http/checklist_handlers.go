package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/CareO-HQ/careo-sub007/internal/store"
)

// ChecklistHandler home/resident checklist state, cached in the KV store.
// Non-authoritative by design: the audit tables are the source of truth,
// these keys only carry in-progress checkbox state between page loads.
// Missing or corrupt values degrade to empty defaults, never an error.
type ChecklistHandler struct {
	kv     store.KV
	logger *zap.Logger
}

func NewChecklistHandler(kv store.KV, logger *zap.Logger) *ChecklistHandler {
	return &ChecklistHandler{kv: kv, logger: logger}
}

// HomeChecklistState per-category checkbox state, keyed by row index.
type HomeChecklistState struct {
	RowStatuses  map[string]string `json:"rowStatuses"`
	AuditorNames map[string]string `json:"auditorNames"`
}

// ResidentChecklistState per-resident checklist state with date tracking.
type ResidentChecklistState struct {
	RowStatuses      map[string]string `json:"rowStatuses"`
	AuditorNames     map[string]string `json:"auditorNames"`
	LastAuditedDates map[string]string `json:"lastAuditedDates"`
	DueDates         map[string]string `json:"dueDates"`
}

func emptyHomeState() HomeChecklistState {
	return HomeChecklistState{
		RowStatuses:  map[string]string{},
		AuditorNames: map[string]string{},
	}
}

func emptyResidentState() ResidentChecklistState {
	return ResidentChecklistState{
		RowStatuses:      map[string]string{},
		AuditorNames:     map[string]string{},
		LastAuditedDates: map[string]string{},
		DueDates:         map[string]string{},
	}
}

func homeKey(organizationID, category string) string {
	return "home-audit:" + organizationID + ":" + category
}

func residentKey(residentID string) string {
	return "resident-audit:" + residentID
}

// Home routes /audit/api/v1/checklists/home/{category}.
func (h *ChecklistHandler) Home(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimPrefix(r.URL.Path, "/audit/api/v1/checklists/home/")
	if category == "" || strings.Contains(category, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	orgID := organizationID(r)
	if orgID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("organization_id is required"))
		return
	}
	key := homeKey(orgID, category)

	switch r.Method {
	case http.MethodGet:
		state := emptyHomeState()
		raw, err := h.kv.Get(r.Context(), key)
		if err != nil && !errors.Is(err, store.ErrMiss) {
			writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
			return
		}
		if err == nil {
			if jsonErr := json.Unmarshal([]byte(raw), &state); jsonErr != nil {
				h.logger.Warn("corrupt home checklist state, serving defaults",
					zap.String("key", key), zap.Error(jsonErr))
				state = emptyHomeState()
			}
		}
		if state.RowStatuses == nil {
			state.RowStatuses = map[string]string{}
		}
		if state.AuditorNames == nil {
			state.AuditorNames = map[string]string{}
		}
		writeJSON(w, http.StatusOK, Ok(state))
	case http.MethodPut:
		var state HomeChecklistState
		if err := readBodyJSON(r, maxAuditBody, &state); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		raw, err := json.Marshal(state)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
			return
		}
		if err := h.kv.Set(r.Context(), key, string(raw), 0); err != nil {
			writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(state))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Categories routes GET /audit/api/v1/checklists/home and lists the
// categories that have saved state for the organization.
func (h *ChecklistHandler) Categories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	orgID := organizationID(r)
	if orgID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("organization_id is required"))
		return
	}

	prefix := homeKey(orgID, "")
	keys, err := h.kv.ScanKeys(r.Context(), prefix+"*")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}
	categories := make([]string, 0, len(keys))
	for _, k := range keys {
		categories = append(categories, strings.TrimPrefix(k, prefix))
	}
	sort.Strings(categories)
	writeJSON(w, http.StatusOK, Ok(categories))
}

// Resident routes /audit/api/v1/checklists/resident/{residentID}.
func (h *ChecklistHandler) Resident(w http.ResponseWriter, r *http.Request) {
	residentID := strings.TrimPrefix(r.URL.Path, "/audit/api/v1/checklists/resident/")
	if residentID == "" || strings.Contains(residentID, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	key := residentKey(residentID)

	switch r.Method {
	case http.MethodGet:
		state := emptyResidentState()
		raw, err := h.kv.Get(r.Context(), key)
		if err != nil && !errors.Is(err, store.ErrMiss) {
			writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
			return
		}
		if err == nil {
			if jsonErr := json.Unmarshal([]byte(raw), &state); jsonErr != nil {
				h.logger.Warn("corrupt resident checklist state, serving defaults",
					zap.String("key", key), zap.Error(jsonErr))
				state = emptyResidentState()
			}
		}
		if state.RowStatuses == nil {
			state.RowStatuses = map[string]string{}
		}
		if state.AuditorNames == nil {
			state.AuditorNames = map[string]string{}
		}
		if state.LastAuditedDates == nil {
			state.LastAuditedDates = map[string]string{}
		}
		if state.DueDates == nil {
			state.DueDates = map[string]string{}
		}
		writeJSON(w, http.StatusOK, Ok(state))
	case http.MethodPut:
		var state ResidentChecklistState
		if err := readBodyJSON(r, maxAuditBody, &state); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
			return
		}
		raw, err := json.Marshal(state)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
			return
		}
		if err := h.kv.Set(r.Context(), key, string(raw), 0); err != nil {
			writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, Ok(state))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
