package repository

import (
	"context"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// IncidentsRepository incident / hospital-transfer log data access.
type IncidentsRepository interface {
	CreateIncident(ctx context.Context, organizationID string, incident *domain.Incident) (string, error)
	GetIncident(ctx context.Context, organizationID, incidentID string) (*domain.Incident, error)
	ListIncidents(ctx context.Context, organizationID string, filters IncidentFilters, page, size int) ([]*domain.Incident, int, error)
	UpdateIncident(ctx context.Context, organizationID, incidentID string, incident *domain.Incident) error
	DeleteIncident(ctx context.Context, organizationID, incidentID string) error
}

// IncidentFilters list filters; zero values mean "no filter".
type IncidentFilters struct {
	ResidentID   string
	IncidentType string
	Severity     string
}
