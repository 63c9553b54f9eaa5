package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/CareO-HQ/careo-sub007/internal/store"
)

// FilesHandler serves stored PDFs under /files/pdfs/{fileID}. In production
// a reverse proxy usually serves the directory; this handler keeps single
// binary deployments working.
type FilesHandler struct {
	files  store.FileStore
	logger *zap.Logger
}

func NewFilesHandler(files store.FileStore, logger *zap.Logger) *FilesHandler {
	return &FilesHandler{files: files, logger: logger}
}

func (h *FilesHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	fileID := strings.TrimPrefix(r.URL.Path, "/files/pdfs/")
	if fileID == "" || strings.Contains(fileID, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	data, err := h.files.Open(fileID)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+fileID+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
