package repository

import (
	"context"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// OrganizationsRepository platform-level organization management.
type OrganizationsRepository interface {
	CreateOrganization(ctx context.Context, org *domain.Organization) (string, error)
	GetOrganization(ctx context.Context, organizationID string) (*domain.Organization, error)
	ListOrganizations(ctx context.Context) ([]*domain.Organization, error)
	UpdateOrganization(ctx context.Context, organizationID string, org *domain.Organization) error
}
