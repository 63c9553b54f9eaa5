package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// PostgresResponsesRepository audit responses backed by audit_responses.
type PostgresResponsesRepository struct {
	db *sql.DB
}

func NewPostgresResponsesRepository(db *sql.DB) *PostgresResponsesRepository {
	return &PostgresResponsesRepository{db: db}
}

var _ ResponsesRepository = (*PostgresResponsesRepository)(nil)

const responseColumns = `
	response_id::text,
	template_id::text,
	organization_id::text,
	COALESCE(resident_id::text, '') AS resident_id,
	COALESCE(items, '[]'::jsonb)::text AS items,
	COALESCE(overall_notes, '') AS overall_notes,
	COALESCE(audited_by, '') AS audited_by,
	status,
	completed_at,
	next_audit_due,
	COALESCE(supersedes::text, '') AS supersedes,
	COALESCE(pdf_file_id, '') AS pdf_file_id,
	COALESCE(pdf_url, '') AS pdf_url,
	pdf_generated_at,
	created_at,
	updated_at
`

func scanResponse(scan func(dest ...any) error) (*domain.AuditResponse, error) {
	var resp domain.AuditResponse
	var itemsRaw string
	var completedAt, nextAuditDue, pdfGeneratedAt sql.NullTime

	if err := scan(
		&resp.ResponseID,
		&resp.TemplateID,
		&resp.OrganizationID,
		&resp.ResidentID,
		&itemsRaw,
		&resp.OverallNotes,
		&resp.AuditedBy,
		&resp.Status,
		&completedAt,
		&nextAuditDue,
		&resp.Supersedes,
		&resp.PDFFileID,
		&resp.PDFURL,
		&pdfGeneratedAt,
		&resp.CreatedAt,
		&resp.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if completedAt.Valid {
		resp.CompletedAt = &completedAt.Time
	}
	if nextAuditDue.Valid {
		resp.NextAuditDue = &nextAuditDue.Time
	}
	if pdfGeneratedAt.Valid {
		resp.PDFGeneratedAt = &pdfGeneratedAt.Time
	}
	if err := json.Unmarshal([]byte(itemsRaw), &resp.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response items: %w", err)
	}

	return &resp, nil
}

func (r *PostgresResponsesRepository) GetResponse(ctx context.Context, organizationID, responseID string) (*domain.AuditResponse, error) {
	if organizationID == "" || responseID == "" {
		return nil, fmt.Errorf("organization_id and response_id are required: %w", ErrNotFound)
	}

	query := `SELECT ` + responseColumns + `
		FROM audit_responses
		WHERE organization_id = $1 AND response_id = $2`

	row := r.db.QueryRowContext(ctx, query, organizationID, responseID)
	resp, err := scanResponse(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("response not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	return resp, nil
}

func (r *PostgresResponsesRepository) FindOpenResponse(ctx context.Context, organizationID, templateID string) (*domain.AuditResponse, error) {
	if organizationID == "" || templateID == "" {
		return nil, fmt.Errorf("organization_id and template_id are required: %w", ErrNotFound)
	}

	query := `SELECT ` + responseColumns + `
		FROM audit_responses
		WHERE organization_id = $1 AND template_id = $2
		  AND status IN ('draft', 'in_progress')
		LIMIT 1`

	row := r.db.QueryRowContext(ctx, query, organizationID, templateID)
	resp, err := scanResponse(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no open response: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find open response: %w", err)
	}
	return resp, nil
}

func (r *PostgresResponsesRepository) CreateResponse(ctx context.Context, organizationID string, resp *domain.AuditResponse) (string, error) {
	if organizationID == "" {
		return "", fmt.Errorf("organization_id is required")
	}
	if resp.TemplateID == "" {
		return "", fmt.Errorf("template_id is required")
	}
	if resp.Status == "" {
		resp.Status = domain.ResponseDraft
	}

	items := resp.Items
	if items == nil {
		items = []domain.ResponseItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal items: %w", err)
	}

	query := `
		INSERT INTO audit_responses (
			template_id, organization_id, resident_id, items, overall_notes,
			audited_by, status, completed_at, next_audit_due, supersedes
		) VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7, $8, $9, $10)
		RETURNING response_id::text
	`

	var completedAt, nextAuditDue any
	if resp.CompletedAt != nil {
		completedAt = *resp.CompletedAt
	}
	if resp.NextAuditDue != nil {
		nextAuditDue = *resp.NextAuditDue
	}

	var responseID string
	err = r.db.QueryRowContext(ctx, query,
		resp.TemplateID, organizationID, nullIfEmpty(resp.ResidentID),
		string(itemsJSON), nullIfEmpty(resp.OverallNotes), nullIfEmpty(resp.AuditedBy),
		resp.Status, completedAt, nextAuditDue, nullIfEmpty(resp.Supersedes),
	).Scan(&responseID)
	if err != nil {
		// idx_audit_responses_open_draft: one open row per (template, organization)
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return "", fmt.Errorf("failed to create response: %w", ErrOpenDraftExists)
		}
		return "", fmt.Errorf("failed to create response: %w", err)
	}

	return responseID, nil
}

func (r *PostgresResponsesRepository) UpdateResponse(ctx context.Context, organizationID, responseID string, resp *domain.AuditResponse) error {
	if organizationID == "" || responseID == "" {
		return fmt.Errorf("organization_id and response_id are required")
	}

	items := resp.Items
	if items == nil {
		items = []domain.ResponseItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}

	query := `
		UPDATE audit_responses
		SET items = $3::jsonb,
		    overall_notes = $4,
		    audited_by = $5,
		    status = $6,
		    updated_at = NOW()
		WHERE organization_id = $1 AND response_id = $2
	`

	result, err := r.db.ExecContext(ctx, query,
		organizationID, responseID, string(itemsJSON),
		nullIfEmpty(resp.OverallNotes), nullIfEmpty(resp.AuditedBy), resp.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to update response: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("response not found: %w", ErrNotFound)
	}

	return nil
}

func (r *PostgresResponsesRepository) CompleteResponse(ctx context.Context, organizationID, responseID string, items []domain.ResponseItem, overallNotes string, completedAt, nextAuditDue time.Time) error {
	if organizationID == "" || responseID == "" {
		return fmt.Errorf("organization_id and response_id are required")
	}

	if items == nil {
		items = []domain.ResponseItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}

	query := `
		UPDATE audit_responses
		SET items = $3::jsonb,
		    overall_notes = $4,
		    status = 'completed',
		    completed_at = $5,
		    next_audit_due = $6,
		    updated_at = NOW()
		WHERE organization_id = $1 AND response_id = $2
	`

	result, err := r.db.ExecContext(ctx, query,
		organizationID, responseID, string(itemsJSON), nullIfEmpty(overallNotes),
		completedAt, nextAuditDue,
	)
	if err != nil {
		return fmt.Errorf("failed to complete response: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("response not found: %w", ErrNotFound)
	}

	return nil
}

// isSuperseded matches rows another row corrects. Scoped to the same
// organization so a cross-tenant supersedes value can never hide a row.
const isSuperseded = `EXISTS (
		SELECT 1 FROM audit_responses newer
		WHERE newer.organization_id = audit_responses.organization_id
		  AND newer.supersedes = audit_responses.response_id
	)`

func (r *PostgresResponsesRepository) ListCompleted(ctx context.Context, organizationID, templateID, residentID string, limit int) ([]*domain.AuditResponse, error) {
	if organizationID == "" || templateID == "" {
		return []*domain.AuditResponse{}, nil
	}

	where := []string{"organization_id = $1", "template_id = $2", "status = 'completed'", "NOT " + isSuperseded}
	args := []any{organizationID, templateID}
	argN := 3

	if residentID != "" {
		where = append(where, fmt.Sprintf("resident_id = $%d", argN))
		args = append(args, residentID)
		argN++
	}

	query := `SELECT ` + responseColumns + `
		FROM audit_responses
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY completed_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argN)
		args = append(args, limit)
	}

	return r.queryResponses(ctx, query, args...)
}

func (r *PostgresResponsesRepository) ListCompletedByOrganization(ctx context.Context, organizationID string) ([]*domain.AuditResponse, error) {
	if organizationID == "" {
		return []*domain.AuditResponse{}, nil
	}

	query := `SELECT ` + responseColumns + `
		FROM audit_responses
		WHERE organization_id = $1 AND status = 'completed' AND NOT ` + isSuperseded + `
		ORDER BY completed_at DESC`

	return r.queryResponses(ctx, query, organizationID)
}

func (r *PostgresResponsesRepository) ListArchived(ctx context.Context, organizationID, templateID, residentID string) ([]*domain.AuditResponse, error) {
	if organizationID == "" || templateID == "" {
		return []*domain.AuditResponse{}, nil
	}

	where := []string{
		"organization_id = $1",
		"template_id = $2",
		"status = 'completed'",
		isSuperseded,
	}
	args := []any{organizationID, templateID}

	if residentID != "" {
		where = append(where, "resident_id = $3")
		args = append(args, residentID)
	}

	query := `SELECT ` + responseColumns + `
		FROM audit_responses
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY completed_at DESC`

	return r.queryResponses(ctx, query, args...)
}

func (r *PostgresResponsesRepository) queryResponses(ctx context.Context, query string, args ...any) ([]*domain.AuditResponse, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	defer rows.Close()

	var responses []*domain.AuditResponse
	for rows.Next() {
		resp, err := scanResponse(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		responses = append(responses, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate responses: %w", err)
	}

	return responses, nil
}

func (r *PostgresResponsesRepository) DeleteResponse(ctx context.Context, organizationID, responseID string) error {
	if organizationID == "" || responseID == "" {
		return fmt.Errorf("organization_id and response_id are required")
	}

	// Action plans go with the row (FK ON DELETE CASCADE).
	query := `
		DELETE FROM audit_responses
		WHERE organization_id = $1 AND response_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, organizationID, responseID)
	if err != nil {
		return fmt.Errorf("failed to delete response: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("response not found: %w", ErrNotFound)
	}

	return nil
}

func (r *PostgresResponsesRepository) SetPDFArtifacts(ctx context.Context, organizationID, responseID, fileID, url string, generatedAt time.Time) error {
	if organizationID == "" || responseID == "" {
		return fmt.Errorf("organization_id and response_id are required")
	}

	query := `
		UPDATE audit_responses
		SET pdf_file_id = $3,
		    pdf_url = $4,
		    pdf_generated_at = $5,
		    updated_at = NOW()
		WHERE organization_id = $1 AND response_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, organizationID, responseID, fileID, url, generatedAt)
	if err != nil {
		return fmt.Errorf("failed to set pdf artifacts: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("response not found: %w", ErrNotFound)
	}

	return nil
}
