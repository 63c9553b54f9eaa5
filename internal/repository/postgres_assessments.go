package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// PostgresAssessmentsRepository clinical forms backed by the assessments table.
type PostgresAssessmentsRepository struct {
	db *sql.DB
}

func NewPostgresAssessmentsRepository(db *sql.DB) *PostgresAssessmentsRepository {
	return &PostgresAssessmentsRepository{db: db}
}

var _ AssessmentsRepository = (*PostgresAssessmentsRepository)(nil)

const assessmentColumns = `
	assessment_id::text,
	organization_id::text,
	COALESCE(resident_id::text, '') AS resident_id,
	form_type,
	COALESCE(data, '{}'::jsonb)::text AS data,
	COALESCE(created_by, '') AS created_by,
	created_at,
	updated_at
`

func scanAssessment(scan func(dest ...any) error) (*domain.Assessment, error) {
	var assessment domain.Assessment
	var dataRaw string

	if err := scan(
		&assessment.AssessmentID,
		&assessment.OrganizationID,
		&assessment.ResidentID,
		&assessment.FormType,
		&dataRaw,
		&assessment.CreatedBy,
		&assessment.CreatedAt,
		&assessment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	assessment.Data = json.RawMessage(dataRaw)

	return &assessment, nil
}

func (r *PostgresAssessmentsRepository) CreateAssessment(ctx context.Context, organizationID string, assessment *domain.Assessment) (string, error) {
	if organizationID == "" {
		return "", fmt.Errorf("organization_id is required")
	}
	if assessment.FormType == "" {
		return "", fmt.Errorf("form_type is required")
	}
	data := assessment.Data
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}

	query := `
		INSERT INTO assessments (organization_id, resident_id, form_type, data, created_by)
		VALUES ($1, $2, $3, $4::jsonb, $5)
		RETURNING assessment_id::text
	`

	var assessmentID string
	err := r.db.QueryRowContext(ctx, query,
		organizationID, nullIfEmpty(assessment.ResidentID), assessment.FormType,
		string(data), nullIfEmpty(assessment.CreatedBy),
	).Scan(&assessmentID)
	if err != nil {
		return "", fmt.Errorf("failed to create assessment: %w", err)
	}

	return assessmentID, nil
}

func (r *PostgresAssessmentsRepository) GetAssessment(ctx context.Context, organizationID, assessmentID string) (*domain.Assessment, error) {
	if organizationID == "" || assessmentID == "" {
		return nil, fmt.Errorf("organization_id and assessment_id are required: %w", ErrNotFound)
	}

	query := `SELECT ` + assessmentColumns + `
		FROM assessments
		WHERE organization_id = $1 AND assessment_id = $2`

	row := r.db.QueryRowContext(ctx, query, organizationID, assessmentID)
	assessment, err := scanAssessment(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("assessment not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return assessment, nil
}

func (r *PostgresAssessmentsRepository) ListAssessments(ctx context.Context, organizationID string, filters AssessmentFilters) ([]*domain.Assessment, error) {
	if organizationID == "" {
		return []*domain.Assessment{}, nil
	}

	where := []string{"organization_id = $1"}
	args := []any{organizationID}
	argN := 2

	if filters.ResidentID != "" {
		where = append(where, fmt.Sprintf("resident_id = $%d", argN))
		args = append(args, filters.ResidentID)
		argN++
	}
	if filters.FormType != "" {
		where = append(where, fmt.Sprintf("form_type = $%d", argN))
		args = append(args, filters.FormType)
		argN++
	}

	query := `SELECT ` + assessmentColumns + `
		FROM assessments
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	var assessments []*domain.Assessment
	for rows.Next() {
		assessment, err := scanAssessment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		assessments = append(assessments, assessment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assessments: %w", err)
	}

	return assessments, nil
}

func (r *PostgresAssessmentsRepository) UpdateAssessment(ctx context.Context, organizationID, assessmentID string, assessment *domain.Assessment) error {
	if organizationID == "" || assessmentID == "" {
		return fmt.Errorf("organization_id and assessment_id are required")
	}
	data := assessment.Data
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}

	query := `
		UPDATE assessments
		SET data = $3::jsonb,
		    updated_at = NOW()
		WHERE organization_id = $1 AND assessment_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, organizationID, assessmentID, string(data))
	if err != nil {
		return fmt.Errorf("failed to update assessment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("assessment not found: %w", ErrNotFound)
	}

	return nil
}

func (r *PostgresAssessmentsRepository) DeleteAssessment(ctx context.Context, organizationID, assessmentID string) error {
	if organizationID == "" || assessmentID == "" {
		return fmt.Errorf("organization_id and assessment_id are required")
	}

	query := `
		DELETE FROM assessments
		WHERE organization_id = $1 AND assessment_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, organizationID, assessmentID)
	if err != nil {
		return fmt.Errorf("failed to delete assessment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("assessment not found: %w", ErrNotFound)
	}

	return nil
}
