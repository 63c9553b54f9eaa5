package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// PostgresIncidentsRepository incidents backed by the incidents table.
type PostgresIncidentsRepository struct {
	db *sql.DB
}

func NewPostgresIncidentsRepository(db *sql.DB) *PostgresIncidentsRepository {
	return &PostgresIncidentsRepository{db: db}
}

var _ IncidentsRepository = (*PostgresIncidentsRepository)(nil)

const incidentColumns = `
	incident_id::text,
	organization_id::text,
	COALESCE(resident_id::text, '') AS resident_id,
	incident_type,
	severity,
	description,
	COALESCE(location, '') AS location,
	occurred_at,
	COALESCE(reported_by, '') AS reported_by,
	reported_at,
	created_at,
	updated_at
`

func scanIncident(scan func(dest ...any) error) (*domain.Incident, error) {
	var incident domain.Incident
	var reportedAt sql.NullTime

	if err := scan(
		&incident.IncidentID,
		&incident.OrganizationID,
		&incident.ResidentID,
		&incident.IncidentType,
		&incident.Severity,
		&incident.Description,
		&incident.Location,
		&incident.OccurredAt,
		&incident.ReportedBy,
		&reportedAt,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if reportedAt.Valid {
		incident.ReportedAt = &reportedAt.Time
	}

	return &incident, nil
}

func (r *PostgresIncidentsRepository) CreateIncident(ctx context.Context, organizationID string, incident *domain.Incident) (string, error) {
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
	if incident.Severity == "" {
		incident.Severity = domain.SeverityLow
	}

	query := `
		INSERT INTO incidents (
			organization_id, resident_id, incident_type, severity, description,
			location, occurred_at, reported_by, reported_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING incident_id::text
	`

	var reportedAt any
	if incident.ReportedAt != nil {
		reportedAt = *incident.ReportedAt
	}

	var incidentID string
	err := r.db.QueryRowContext(ctx, query,
		organizationID, nullIfEmpty(incident.ResidentID), incident.IncidentType,
		incident.Severity, incident.Description, nullIfEmpty(incident.Location),
		incident.OccurredAt, nullIfEmpty(incident.ReportedBy), reportedAt,
	).Scan(&incidentID)
	if err != nil {
		return "", fmt.Errorf("failed to create incident: %w", err)
	}

	return incidentID, nil
}

func (r *PostgresIncidentsRepository) GetIncident(ctx context.Context, organizationID, incidentID string) (*domain.Incident, error) {
	if organizationID == "" || incidentID == "" {
		return nil, fmt.Errorf("organization_id and incident_id are required: %w", ErrNotFound)
	}

	query := `SELECT ` + incidentColumns + `
		FROM incidents
		WHERE organization_id = $1 AND incident_id = $2`

	row := r.db.QueryRowContext(ctx, query, organizationID, incidentID)
	incident, err := scanIncident(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("incident not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get incident: %w", err)
	}
	return incident, nil
}

func (r *PostgresIncidentsRepository) ListIncidents(ctx context.Context, organizationID string, filters IncidentFilters, page, size int) ([]*domain.Incident, int, error) {
	if organizationID == "" {
		return []*domain.Incident{}, 0, nil
	}

	where := []string{"organization_id = $1"}
	args := []any{organizationID}
	argN := 2

	if filters.ResidentID != "" {
		where = append(where, fmt.Sprintf("resident_id = $%d", argN))
		args = append(args, filters.ResidentID)
		argN++
	}
	if filters.IncidentType != "" {
		where = append(where, fmt.Sprintf("incident_type = $%d", argN))
		args = append(args, filters.IncidentType)
		argN++
	}
	if filters.Severity != "" {
		where = append(where, fmt.Sprintf("severity = $%d", argN))
		args = append(args, filters.Severity)
		argN++
	}

	queryCount := `SELECT COUNT(*) FROM incidents WHERE ` + strings.Join(where, " AND ")
	var total int
	if err := r.db.QueryRowContext(ctx, queryCount, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count incidents: %w", err)
	}

	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	offset := (page - 1) * size

	query := `SELECT ` + incidentColumns + `
		FROM incidents
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY occurred_at DESC
		LIMIT $` + fmt.Sprintf("%d", argN) + ` OFFSET $` + fmt.Sprintf("%d", argN+1)
	args = append(args, size, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	var incidents []*domain.Incident
	for rows.Next() {
		incident, err := scanIncident(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan incident: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate incidents: %w", err)
	}

	return incidents, total, nil
}

func (r *PostgresIncidentsRepository) UpdateIncident(ctx context.Context, organizationID, incidentID string, incident *domain.Incident) error {
	if organizationID == "" || incidentID == "" {
		return fmt.Errorf("organization_id and incident_id are required")
	}

	query := `
		UPDATE incidents
		SET incident_type = $3,
		    severity = $4,
		    description = $5,
		    location = $6,
		    occurred_at = $7,
		    reported_by = $8,
		    reported_at = $9,
		    updated_at = NOW()
		WHERE organization_id = $1 AND incident_id = $2
	`

	var reportedAt any
	if incident.ReportedAt != nil {
		reportedAt = *incident.ReportedAt
	}

	result, err := r.db.ExecContext(ctx, query,
		organizationID, incidentID, incident.IncidentType, incident.Severity,
		incident.Description, nullIfEmpty(incident.Location), incident.OccurredAt,
		nullIfEmpty(incident.ReportedBy), reportedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update incident: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("incident not found: %w", ErrNotFound)
	}

	return nil
}

func (r *PostgresIncidentsRepository) DeleteIncident(ctx context.Context, organizationID, incidentID string) error {
	if organizationID == "" || incidentID == "" {
		return fmt.Errorf("organization_id and incident_id are required")
	}

	query := `
		DELETE FROM incidents
		WHERE organization_id = $1 AND incident_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, organizationID, incidentID)
	if err != nil {
		return fmt.Errorf("failed to delete incident: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("incident not found: %w", ErrNotFound)
	}

	return nil
}
