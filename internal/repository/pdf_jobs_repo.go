package repository

import (
	"context"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// PDFJobsRepository outbox for asynchronous audit PDF rendering.
//
// Completing an audit enqueues a pending job in the same flow that freezes
// the response; the PDF worker drains pending jobs and marks each one
// succeeded or failed. Failed jobs stay failed, there is no automatic retry.
type PDFJobsRepository interface {
	Enqueue(ctx context.Context, organizationID, responseID string) (string, error)
	GetJob(ctx context.Context, jobID string) (*domain.PDFJob, error)
	GetJobByResponse(ctx context.Context, organizationID, responseID string) (*domain.PDFJob, error)
	ListPending(ctx context.Context, limit int) ([]*domain.PDFJob, error)
	MarkSucceeded(ctx context.Context, jobID string) error
	MarkFailed(ctx context.Context, jobID, lastError string) error
}
