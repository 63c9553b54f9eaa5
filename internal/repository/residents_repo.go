package repository

import (
	"context"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// ResidentsRepository resident record data access.
type ResidentsRepository interface {
	GetResident(ctx context.Context, organizationID, residentID string) (*domain.Resident, error)
	ListResidents(ctx context.Context, organizationID string, filters ResidentFilters, page, size int) ([]*domain.Resident, int, error)
	CreateResident(ctx context.Context, organizationID string, resident *domain.Resident) (string, error)
	UpdateResident(ctx context.Context, organizationID, residentID string, resident *domain.Resident) error
	DeleteResident(ctx context.Context, organizationID, residentID string) error
}

// ResidentFilters list filters; zero values mean "no filter".
type ResidentFilters struct {
	Status string // active/discharged/transferred
	Search string // substring match on first_name/last_name/room_number
}
