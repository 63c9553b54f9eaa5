package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/CareO-HQ/careo-sub007/internal/repository"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// writeError maps repository sentinels to HTTP statuses inside the envelope.
// Organization mismatch is an authorization failure (403), never a 404.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrOrganizationMismatch):
		writeJSON(w, http.StatusForbidden, Fail(err.Error()))
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, Fail(err.Error()))
	case errors.Is(err, repository.ErrOpenDraftExists):
		writeJSON(w, http.StatusConflict, Fail(err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
	}
}

// organizationID pulls the tenancy scope off the query string. Every
// envelope route requires it.
func organizationID(r *http.Request) string {
	return r.URL.Query().Get("organization_id")
}
