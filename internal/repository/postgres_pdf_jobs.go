package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// PostgresPDFJobsRepository pdf_jobs outbox backed by Postgres.
type PostgresPDFJobsRepository struct {
	db *sql.DB
}

func NewPostgresPDFJobsRepository(db *sql.DB) *PostgresPDFJobsRepository {
	return &PostgresPDFJobsRepository{db: db}
}

var _ PDFJobsRepository = (*PostgresPDFJobsRepository)(nil)

const pdfJobColumns = `
	job_id::text,
	organization_id::text,
	response_id::text,
	status,
	attempts,
	COALESCE(last_error, '') AS last_error,
	created_at,
	updated_at
`

func scanPDFJob(scan func(dest ...any) error) (*domain.PDFJob, error) {
	var job domain.PDFJob
	if err := scan(
		&job.JobID,
		&job.OrganizationID,
		&job.ResponseID,
		&job.Status,
		&job.Attempts,
		&job.LastError,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *PostgresPDFJobsRepository) Enqueue(ctx context.Context, organizationID, responseID string) (string, error) {
	if organizationID == "" || responseID == "" {
		return "", fmt.Errorf("organization_id and response_id are required")
	}

	query := `
		INSERT INTO pdf_jobs (organization_id, response_id, status)
		VALUES ($1, $2, $3)
		RETURNING job_id::text
	`

	var jobID string
	err := r.db.QueryRowContext(ctx, query, organizationID, responseID, domain.PDFJobPending).Scan(&jobID)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue pdf job: %w", err)
	}

	return jobID, nil
}

func (r *PostgresPDFJobsRepository) GetJob(ctx context.Context, jobID string) (*domain.PDFJob, error) {
	if jobID == "" {
		return nil, fmt.Errorf("job_id is required: %w", ErrNotFound)
	}

	query := `SELECT ` + pdfJobColumns + `
		FROM pdf_jobs
		WHERE job_id = $1`

	row := r.db.QueryRowContext(ctx, query, jobID)
	job, err := scanPDFJob(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("pdf job not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get pdf job: %w", err)
	}
	return job, nil
}

func (r *PostgresPDFJobsRepository) GetJobByResponse(ctx context.Context, organizationID, responseID string) (*domain.PDFJob, error) {
	if organizationID == "" || responseID == "" {
		return nil, fmt.Errorf("organization_id and response_id are required: %w", ErrNotFound)
	}

	query := `SELECT ` + pdfJobColumns + `
		FROM pdf_jobs
		WHERE organization_id = $1 AND response_id = $2
		ORDER BY created_at DESC
		LIMIT 1`

	row := r.db.QueryRowContext(ctx, query, organizationID, responseID)
	job, err := scanPDFJob(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("pdf job not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get pdf job: %w", err)
	}
	return job, nil
}

func (r *PostgresPDFJobsRepository) ListPending(ctx context.Context, limit int) ([]*domain.PDFJob, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT ` + pdfJobColumns + `
		FROM pdf_jobs
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, domain.PDFJobPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending pdf jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.PDFJob
	for rows.Next() {
		job, err := scanPDFJob(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pdf job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pdf jobs: %w", err)
	}

	return jobs, nil
}

func (r *PostgresPDFJobsRepository) MarkSucceeded(ctx context.Context, jobID string) error {
	return r.markDone(ctx, jobID, domain.PDFJobSucceeded, "")
}

func (r *PostgresPDFJobsRepository) MarkFailed(ctx context.Context, jobID, lastError string) error {
	return r.markDone(ctx, jobID, domain.PDFJobFailed, lastError)
}

func (r *PostgresPDFJobsRepository) markDone(ctx context.Context, jobID, status, lastError string) error {
	if jobID == "" {
		return fmt.Errorf("job_id is required")
	}

	query := `
		UPDATE pdf_jobs
		SET status = $2,
		    attempts = attempts + 1,
		    last_error = $3,
		    updated_at = NOW()
		WHERE job_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, jobID, status, nullIfEmpty(lastError))
	if err != nil {
		return fmt.Errorf("failed to update pdf job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("pdf job not found: %w", ErrNotFound)
	}

	return nil
}
