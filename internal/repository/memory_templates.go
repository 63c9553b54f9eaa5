package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// MemoryTemplatesRepo in-memory TemplatesRepository for running without a
// database and for unit tests. Keyed per organization like the Postgres
// implementation filters per organization.
type MemoryTemplatesRepo struct {
	mu        sync.RWMutex
	templates map[string]map[string]*domain.AuditTemplate // organizationID -> templateID -> template
}

func NewMemoryTemplatesRepo() *MemoryTemplatesRepo {
	return &MemoryTemplatesRepo{templates: map[string]map[string]*domain.AuditTemplate{}}
}

var _ TemplatesRepository = (*MemoryTemplatesRepo)(nil)

func (r *MemoryTemplatesRepo) CreateTemplate(_ context.Context, organizationID string, tpl *domain.AuditTemplate) (string, error) {
	if organizationID == "" {
		return "", fmt.Errorf("organization_id is required")
	}
	if tpl.Name == "" {
		return "", fmt.Errorf("template name is required")
	}
	if !domain.ValidFrequency(tpl.Frequency) {
		return "", fmt.Errorf("invalid frequency: %q", tpl.Frequency)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.templates[organizationID] == nil {
		r.templates[organizationID] = map[string]*domain.AuditTemplate{}
	}

	now := time.Now()
	stored := *tpl
	stored.TemplateID = uuid.NewString()
	stored.OrganizationID = organizationID
	if stored.Items == nil {
		stored.Items = []domain.TemplateItem{}
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.templates[organizationID][stored.TemplateID] = &stored

	return stored.TemplateID, nil
}

func (r *MemoryTemplatesRepo) GetTemplate(_ context.Context, organizationID, templateID string) (*domain.AuditTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tpl, ok := r.templates[organizationID][templateID]
	if !ok {
		return nil, fmt.Errorf("template not found: %w", ErrNotFound)
	}
	out := *tpl
	return &out, nil
}

func (r *MemoryTemplatesRepo) ListTemplates(_ context.Context, organizationID string) ([]*domain.AuditTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.AuditTemplate
	for _, tpl := range r.templates[organizationID] {
		copied := *tpl
		out = append(out, &copied)
	}
	return out, nil
}

func (r *MemoryTemplatesRepo) UpdateTemplate(_ context.Context, organizationID, templateID string, tpl *domain.AuditTemplate) error {
	if tpl.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if !domain.ValidFrequency(tpl.Frequency) {
		return fmt.Errorf("invalid frequency: %q", tpl.Frequency)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.templates[organizationID][templateID]
	if !ok {
		return fmt.Errorf("template not found: %w", ErrNotFound)
	}

	existing.Name = tpl.Name
	existing.Description = tpl.Description
	existing.Frequency = tpl.Frequency
	if tpl.Items != nil {
		existing.Items = tpl.Items
	} else {
		existing.Items = []domain.TemplateItem{}
	}
	existing.UpdatedAt = time.Now()

	return nil
}

func (r *MemoryTemplatesRepo) DeleteTemplate(_ context.Context, organizationID, templateID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[organizationID][templateID]; !ok {
		return fmt.Errorf("template not found: %w", ErrNotFound)
	}
	delete(r.templates[organizationID], templateID)
	return nil
}
