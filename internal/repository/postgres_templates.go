package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// PostgresTemplatesRepository audit templates backed by audit_templates.
type PostgresTemplatesRepository struct {
	db *sql.DB
}

func NewPostgresTemplatesRepository(db *sql.DB) *PostgresTemplatesRepository {
	return &PostgresTemplatesRepository{db: db}
}

var _ TemplatesRepository = (*PostgresTemplatesRepository)(nil)

func (r *PostgresTemplatesRepository) CreateTemplate(ctx context.Context, organizationID string, tpl *domain.AuditTemplate) (string, error) {
	if organizationID == "" {
		return "", fmt.Errorf("organization_id is required")
	}
	if tpl.Name == "" {
		return "", fmt.Errorf("template name is required")
	}
	if !domain.ValidFrequency(tpl.Frequency) {
		return "", fmt.Errorf("invalid frequency: %q", tpl.Frequency)
	}

	// Empty item lists are allowed at creation; items get populated later.
	items := tpl.Items
	if items == nil {
		items = []domain.TemplateItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal items: %w", err)
	}

	query := `
		INSERT INTO audit_templates (
			organization_id, name, description, items, frequency, team_id, created_by
		) VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7)
		RETURNING template_id::text
	`

	var templateID string
	err = r.db.QueryRowContext(ctx, query,
		organizationID, tpl.Name, nullIfEmpty(tpl.Description), string(itemsJSON),
		tpl.Frequency, nullIfEmpty(tpl.TeamID), nullIfEmpty(tpl.CreatedBy),
	).Scan(&templateID)
	if err != nil {
		return "", fmt.Errorf("failed to create template: %w", err)
	}

	return templateID, nil
}

func (r *PostgresTemplatesRepository) GetTemplate(ctx context.Context, organizationID, templateID string) (*domain.AuditTemplate, error) {
	if organizationID == "" || templateID == "" {
		return nil, fmt.Errorf("organization_id and template_id are required: %w", ErrNotFound)
	}

	query := `
		SELECT
			template_id::text,
			organization_id::text,
			name,
			COALESCE(description, '') AS description,
			COALESCE(items, '[]'::jsonb)::text AS items,
			frequency,
			COALESCE(team_id, '') AS team_id,
			COALESCE(created_by, '') AS created_by,
			created_at,
			updated_at
		FROM audit_templates
		WHERE organization_id = $1 AND template_id = $2
	`

	var tpl domain.AuditTemplate
	var itemsRaw string
	err := r.db.QueryRowContext(ctx, query, organizationID, templateID).Scan(
		&tpl.TemplateID,
		&tpl.OrganizationID,
		&tpl.Name,
		&tpl.Description,
		&itemsRaw,
		&tpl.Frequency,
		&tpl.TeamID,
		&tpl.CreatedBy,
		&tpl.CreatedAt,
		&tpl.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("template not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if err := json.Unmarshal([]byte(itemsRaw), &tpl.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal template items: %w", err)
	}

	return &tpl, nil
}

func (r *PostgresTemplatesRepository) ListTemplates(ctx context.Context, organizationID string) ([]*domain.AuditTemplate, error) {
	if organizationID == "" {
		return []*domain.AuditTemplate{}, nil
	}

	query := `
		SELECT
			template_id::text,
			organization_id::text,
			name,
			COALESCE(description, '') AS description,
			COALESCE(items, '[]'::jsonb)::text AS items,
			frequency,
			COALESCE(team_id, '') AS team_id,
			COALESCE(created_by, '') AS created_by,
			created_at,
			updated_at
		FROM audit_templates
		WHERE organization_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []*domain.AuditTemplate
	for rows.Next() {
		var tpl domain.AuditTemplate
		var itemsRaw string
		if err := rows.Scan(
			&tpl.TemplateID,
			&tpl.OrganizationID,
			&tpl.Name,
			&tpl.Description,
			&itemsRaw,
			&tpl.Frequency,
			&tpl.TeamID,
			&tpl.CreatedBy,
			&tpl.CreatedAt,
			&tpl.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		if err := json.Unmarshal([]byte(itemsRaw), &tpl.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal template items: %w", err)
		}
		templates = append(templates, &tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}

	return templates, nil
}

func (r *PostgresTemplatesRepository) UpdateTemplate(ctx context.Context, organizationID, templateID string, tpl *domain.AuditTemplate) error {
	if organizationID == "" || templateID == "" {
		return fmt.Errorf("organization_id and template_id are required")
	}
	if tpl.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if !domain.ValidFrequency(tpl.Frequency) {
		return fmt.Errorf("invalid frequency: %q", tpl.Frequency)
	}

	items := tpl.Items
	if items == nil {
		items = []domain.TemplateItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}

	query := `
		UPDATE audit_templates
		SET name = $3,
		    description = $4,
		    items = $5::jsonb,
		    frequency = $6,
		    updated_at = NOW()
		WHERE organization_id = $1 AND template_id = $2
	`

	result, err := r.db.ExecContext(ctx, query,
		organizationID, templateID, tpl.Name, nullIfEmpty(tpl.Description),
		string(itemsJSON), tpl.Frequency,
	)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("template not found: %w", ErrNotFound)
	}

	return nil
}

func (r *PostgresTemplatesRepository) DeleteTemplate(ctx context.Context, organizationID, templateID string) error {
	if organizationID == "" || templateID == "" {
		return fmt.Errorf("organization_id and template_id are required")
	}

	// No cascade: completions for this template are retained on purpose.
	query := `
		DELETE FROM audit_templates
		WHERE organization_id = $1 AND template_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, organizationID, templateID)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("template not found: %w", ErrNotFound)
	}

	return nil
}

// nullIfEmpty maps "" to NULL for nullable text columns.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
