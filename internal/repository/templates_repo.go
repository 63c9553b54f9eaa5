package repository

import (
	"context"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// TemplatesRepository audit template data access.
// Organization-scoped: every method filters on organization_id.
type TemplatesRepository interface {
	CreateTemplate(ctx context.Context, organizationID string, tpl *domain.AuditTemplate) (string, error)
	GetTemplate(ctx context.Context, organizationID, templateID string) (*domain.AuditTemplate, error)
	// ListTemplates returns all templates for the organization. No order is
	// guaranteed; callers re-sort.
	ListTemplates(ctx context.Context, organizationID string) ([]*domain.AuditTemplate, error)
	// UpdateTemplate edits name/description/items/frequency in place.
	// Not versioned: past completions keep their own item snapshots.
	UpdateTemplate(ctx context.Context, organizationID, templateID string, tpl *domain.AuditTemplate) error
	// DeleteTemplate removes the template row only. Completions referencing
	// it are retained (audit trail policy) and stay queryable by id.
	DeleteTemplate(ctx context.Context, organizationID, templateID string) error
}
