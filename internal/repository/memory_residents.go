package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// MemoryResidentsRepo in-memory ResidentsRepository for DB-less runs and tests.
type MemoryResidentsRepo struct {
	mu        sync.RWMutex
	residents map[string]map[string]*domain.Resident // organizationID -> residentID -> resident
}

func NewMemoryResidentsRepo() *MemoryResidentsRepo {
	return &MemoryResidentsRepo{residents: map[string]map[string]*domain.Resident{}}
}

var _ ResidentsRepository = (*MemoryResidentsRepo)(nil)

func (r *MemoryResidentsRepo) GetResident(_ context.Context, organizationID, residentID string) (*domain.Resident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resident, ok := r.residents[organizationID][residentID]
	if !ok {
		return nil, fmt.Errorf("resident not found: %w", ErrNotFound)
	}
	out := *resident
	return &out, nil
}

func (r *MemoryResidentsRepo) ListResidents(_ context.Context, organizationID string, filters ResidentFilters, page, size int) ([]*domain.Resident, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*domain.Resident
	for _, resident := range r.residents[organizationID] {
		if filters.Status != "" && resident.Status != filters.Status {
			continue
		}
		if filters.Search != "" {
			needle := strings.ToLower(filters.Search)
			if !strings.Contains(strings.ToLower(resident.FirstName), needle) &&
				!strings.Contains(strings.ToLower(resident.LastName), needle) &&
				!strings.Contains(strings.ToLower(resident.RoomNumber), needle) {
				continue
			}
		}
		copied := *resident
		all = append(all, &copied)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].LastName != all[j].LastName {
			return all[i].LastName < all[j].LastName
		}
		return all[i].FirstName < all[j].FirstName
	})

	total := len(all)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	return all[start:end], total, nil
}

func (r *MemoryResidentsRepo) CreateResident(_ context.Context, organizationID string, resident *domain.Resident) (string, error) {
	if organizationID == "" {
		return "", fmt.Errorf("organization_id is required")
	}
	if resident.FirstName == "" && resident.LastName == "" {
		return "", fmt.Errorf("resident name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.residents[organizationID] == nil {
		r.residents[organizationID] = map[string]*domain.Resident{}
	}

	now := time.Now()
	stored := *resident
	stored.ResidentID = uuid.NewString()
	stored.OrganizationID = organizationID
	if stored.Status == "" {
		stored.Status = domain.ResidentActive
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.residents[organizationID][stored.ResidentID] = &stored

	return stored.ResidentID, nil
}

func (r *MemoryResidentsRepo) UpdateResident(_ context.Context, organizationID, residentID string, resident *domain.Resident) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.residents[organizationID][residentID]
	if !ok {
		return fmt.Errorf("resident not found: %w", ErrNotFound)
	}

	existing.FirstName = resident.FirstName
	existing.LastName = resident.LastName
	existing.DateOfBirth = resident.DateOfBirth
	existing.RoomNumber = resident.RoomNumber
	existing.AdmissionDate = resident.AdmissionDate
	existing.DischargeDate = resident.DischargeDate
	existing.Status = resident.Status
	existing.Notes = resident.Notes
	existing.UpdatedAt = time.Now()

	return nil
}

func (r *MemoryResidentsRepo) DeleteResident(_ context.Context, organizationID, residentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.residents[organizationID][residentID]; !ok {
		return fmt.Errorf("resident not found: %w", ErrNotFound)
	}
	delete(r.residents[organizationID], residentID)
	return nil
}
