package domain

import "time"

// PDFJob outbox row for asynchronous PDF generation (pdf_jobs table).
//
// Completing an audit writes a pending job; the PDF worker renders it,
// stores the file, patches the response and marks the job. A failed job is
// logged and left as failed: the completion itself is never rolled back and
// nothing retries automatically. The job status is what distinguishes
// "not rendered yet" from "rendering failed".
type PDFJob struct {
	JobID          string `db:"job_id"`          // UUID, PRIMARY KEY
	OrganizationID string `db:"organization_id"` // UUID, NOT NULL
	ResponseID     string `db:"response_id"`     // UUID, NOT NULL

	Status    string `db:"status"`     // VARCHAR(20), NOT NULL (pending/succeeded/failed)
	Attempts  int    `db:"attempts"`   // NOT NULL, DEFAULT 0
	LastError string `db:"last_error"` // TEXT, nullable

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const (
	PDFJobPending   = "pending"
	PDFJobSucceeded = "succeeded"
	PDFJobFailed    = "failed"
)
