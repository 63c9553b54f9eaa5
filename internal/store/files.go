package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore persists rendered PDF documents and hands back an opaque file id
// plus a URL the frontend can download from.
type FileStore interface {
	Save(name string, data []byte) (fileID string, url string, err error)
	Open(fileID string) ([]byte, error)
}

// DiskFileStore writes files under a local directory. The URL is
// baseURL + "/" + fileID; serving the directory is the deployment's concern
// (nginx or the /files/ handler in this service).
type DiskFileStore struct {
	dir     string
	baseURL string
}

func NewDiskFileStore(dir, baseURL string) (*DiskFileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create file store dir: %w", err)
	}
	return &DiskFileStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *DiskFileStore) Save(name string, data []byte) (string, string, error) {
	fileID := uuid.NewString() + "-" + sanitizeFilename(name)
	path := filepath.Join(s.dir, fileID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write file: %w", err)
	}
	return fileID, s.baseURL + "/" + fileID, nil
}

func (s *DiskFileStore) Open(fileID string) ([]byte, error) {
	// fileID is generated by Save; reject anything trying to escape the dir
	if strings.Contains(fileID, "/") || strings.Contains(fileID, "..") {
		return nil, fmt.Errorf("invalid file id")
	}
	data, err := os.ReadFile(filepath.Join(s.dir, fileID))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	out := b.String()
	if out == "" {
		out = "document.pdf"
	}
	return out
}
