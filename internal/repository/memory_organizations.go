package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// MemoryOrganizationsRepo in-memory OrganizationsRepository.
type MemoryOrganizationsRepo struct {
	mu   sync.RWMutex
	orgs map[string]*domain.Organization
}

func NewMemoryOrganizationsRepo() *MemoryOrganizationsRepo {
	return &MemoryOrganizationsRepo{orgs: map[string]*domain.Organization{}}
}

var _ OrganizationsRepository = (*MemoryOrganizationsRepo)(nil)

func (r *MemoryOrganizationsRepo) CreateOrganization(_ context.Context, org *domain.Organization) (string, error) {
	if org.Name == "" {
		return "", fmt.Errorf("organization name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *org
	if stored.OrganizationID == "" {
		stored.OrganizationID = uuid.NewString()
	}
	if stored.Status == "" {
		stored.Status = domain.OrganizationActive
	}
	stored.CreatedAt = time.Now()
	r.orgs[stored.OrganizationID] = &stored

	return stored.OrganizationID, nil
}

func (r *MemoryOrganizationsRepo) GetOrganization(_ context.Context, organizationID string) (*domain.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org, ok := r.orgs[organizationID]
	if !ok {
		return nil, fmt.Errorf("organization not found: %w", ErrNotFound)
	}
	out := *org
	return &out, nil
}

func (r *MemoryOrganizationsRepo) ListOrganizations(_ context.Context) ([]*domain.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Organization
	for _, org := range r.orgs {
		copied := *org
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryOrganizationsRepo) UpdateOrganization(_ context.Context, organizationID string, org *domain.Organization) error {
	if org.Name == "" {
		return fmt.Errorf("organization name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.orgs[organizationID]
	if !ok {
		return fmt.Errorf("organization not found: %w", ErrNotFound)
	}
	existing.Name = org.Name
	existing.Domain = org.Domain
	if org.Status != "" {
		existing.Status = org.Status
	}
	return nil
}
