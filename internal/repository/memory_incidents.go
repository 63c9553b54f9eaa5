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

// MemoryIncidentsRepo in-memory IncidentsRepository.
type MemoryIncidentsRepo struct {
	mu        sync.RWMutex
	incidents map[string]map[string]*domain.Incident // organizationID -> incidentID -> incident
}

func NewMemoryIncidentsRepo() *MemoryIncidentsRepo {
	return &MemoryIncidentsRepo{incidents: map[string]map[string]*domain.Incident{}}
}

var _ IncidentsRepository = (*MemoryIncidentsRepo)(nil)

func (r *MemoryIncidentsRepo) CreateIncident(_ context.Context, organizationID string, incident *domain.Incident) (string, error) {
	if organizationID == "" {
		return "", fmt.Errorf("organization_id is required")
	}
	if incident.IncidentType == "" {
		return "", fmt.Errorf("incident_type is required")
	}
	if incident.Description == "" {
		return "", fmt.Errorf("description is required")
	}
	if incident.OccurredAt.IsZero() {
		return "", fmt.Errorf("occurred_at is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.incidents[organizationID] == nil {
		r.incidents[organizationID] = map[string]*domain.Incident{}
	}

	now := time.Now()
	stored := *incident
	stored.IncidentID = uuid.NewString()
	stored.OrganizationID = organizationID
	if stored.Severity == "" {
		stored.Severity = domain.SeverityLow
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.incidents[organizationID][stored.IncidentID] = &stored

	return stored.IncidentID, nil
}

func (r *MemoryIncidentsRepo) GetIncident(_ context.Context, organizationID, incidentID string) (*domain.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	incident, ok := r.incidents[organizationID][incidentID]
	if !ok {
		return nil, fmt.Errorf("incident not found: %w", ErrNotFound)
	}
	out := *incident
	return &out, nil
}

func (r *MemoryIncidentsRepo) ListIncidents(_ context.Context, organizationID string, filters IncidentFilters, page, size int) ([]*domain.Incident, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*domain.Incident
	for _, incident := range r.incidents[organizationID] {
		if filters.ResidentID != "" && incident.ResidentID != filters.ResidentID {
			continue
		}
		if filters.IncidentType != "" && incident.IncidentType != filters.IncidentType {
			continue
		}
		if filters.Severity != "" && incident.Severity != filters.Severity {
			continue
		}
		copied := *incident
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].OccurredAt.After(all[j].OccurredAt) })

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

func (r *MemoryIncidentsRepo) UpdateIncident(_ context.Context, organizationID, incidentID string, incident *domain.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.incidents[organizationID][incidentID]
	if !ok {
		return fmt.Errorf("incident not found: %w", ErrNotFound)
	}

	existing.IncidentType = incident.IncidentType
	existing.Severity = incident.Severity
	existing.Description = incident.Description
	existing.Location = incident.Location
	existing.OccurredAt = incident.OccurredAt
	existing.ReportedBy = incident.ReportedBy
	existing.ReportedAt = incident.ReportedAt
	existing.UpdatedAt = time.Now()

	return nil
}

func (r *MemoryIncidentsRepo) DeleteIncident(_ context.Context, organizationID, incidentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.incidents[organizationID][incidentID]; !ok {
		return fmt.Errorf("incident not found: %w", ErrNotFound)
	}
	delete(r.incidents[organizationID], incidentID)
	return nil
}
