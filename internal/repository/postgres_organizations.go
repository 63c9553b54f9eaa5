package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// PostgresOrganizationsRepository organizations backed by the organizations table.
type PostgresOrganizationsRepository struct {
	db *sql.DB
}

func NewPostgresOrganizationsRepository(db *sql.DB) *PostgresOrganizationsRepository {
	return &PostgresOrganizationsRepository{db: db}
}

var _ OrganizationsRepository = (*PostgresOrganizationsRepository)(nil)

func (r *PostgresOrganizationsRepository) CreateOrganization(ctx context.Context, org *domain.Organization) (string, error) {
	if org.Name == "" {
		return "", fmt.Errorf("organization name is required")
	}
	if org.Status == "" {
		org.Status = domain.OrganizationActive
	}

	query := `
		INSERT INTO organizations (name, domain, status)
		VALUES ($1, $2, $3)
		RETURNING organization_id::text
	`

	var organizationID string
	err := r.db.QueryRowContext(ctx, query, org.Name, nullIfEmpty(org.Domain), org.Status).Scan(&organizationID)
	if err != nil {
		return "", fmt.Errorf("failed to create organization: %w", err)
	}

	return organizationID, nil
}

func (r *PostgresOrganizationsRepository) GetOrganization(ctx context.Context, organizationID string) (*domain.Organization, error) {
	if organizationID == "" {
		return nil, fmt.Errorf("organization_id is required: %w", ErrNotFound)
	}

	query := `
		SELECT
			organization_id::text,
			name,
			COALESCE(domain, '') AS domain,
			status,
			created_at
		FROM organizations
		WHERE organization_id = $1
	`

	var org domain.Organization
	err := r.db.QueryRowContext(ctx, query, organizationID).Scan(
		&org.OrganizationID,
		&org.Name,
		&org.Domain,
		&org.Status,
		&org.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("organization not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return &org, nil
}

func (r *PostgresOrganizationsRepository) ListOrganizations(ctx context.Context) ([]*domain.Organization, error) {
	query := `
		SELECT
			organization_id::text,
			name,
			COALESCE(domain, '') AS domain,
			status,
			created_at
		FROM organizations
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*domain.Organization
	for rows.Next() {
		var org domain.Organization
		if err := rows.Scan(
			&org.OrganizationID,
			&org.Name,
			&org.Domain,
			&org.Status,
			&org.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, &org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate organizations: %w", err)
	}

	return orgs, nil
}

func (r *PostgresOrganizationsRepository) UpdateOrganization(ctx context.Context, organizationID string, org *domain.Organization) error {
	if organizationID == "" {
		return fmt.Errorf("organization_id is required")
	}
	if org.Name == "" {
		return fmt.Errorf("organization name is required")
	}

	query := `
		UPDATE organizations
		SET name = $2,
		    domain = $3,
		    status = $4
		WHERE organization_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, organizationID, org.Name, nullIfEmpty(org.Domain), org.Status)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("organization not found: %w", ErrNotFound)
	}

	return nil
}
