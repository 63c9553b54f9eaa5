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

// MemoryPDFJobsRepo in-memory PDFJobsRepository.
type MemoryPDFJobsRepo struct {
	mu   sync.RWMutex
	jobs map[string]*domain.PDFJob // jobID -> job
}

func NewMemoryPDFJobsRepo() *MemoryPDFJobsRepo {
	return &MemoryPDFJobsRepo{jobs: map[string]*domain.PDFJob{}}
}

var _ PDFJobsRepository = (*MemoryPDFJobsRepo)(nil)

func (r *MemoryPDFJobsRepo) Enqueue(_ context.Context, organizationID, responseID string) (string, error) {
	if organizationID == "" || responseID == "" {
		return "", fmt.Errorf("organization_id and response_id are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	job := &domain.PDFJob{
		JobID:          uuid.NewString(),
		OrganizationID: organizationID,
		ResponseID:     responseID,
		Status:         domain.PDFJobPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.jobs[job.JobID] = job

	return job.JobID, nil
}

func (r *MemoryPDFJobsRepo) GetJob(_ context.Context, jobID string) (*domain.PDFJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("pdf job not found: %w", ErrNotFound)
	}
	out := *job
	return &out, nil
}

func (r *MemoryPDFJobsRepo) GetJobByResponse(_ context.Context, organizationID, responseID string) (*domain.PDFJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.PDFJob
	for _, job := range r.jobs {
		if job.OrganizationID != organizationID || job.ResponseID != responseID {
			continue
		}
		if latest == nil || job.CreatedAt.After(latest.CreatedAt) {
			latest = job
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("pdf job not found: %w", ErrNotFound)
	}
	out := *latest
	return &out, nil
}

func (r *MemoryPDFJobsRepo) ListPending(_ context.Context, limit int) ([]*domain.PDFJob, error) {
	if limit <= 0 {
		limit = 10
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var pending []*domain.PDFJob
	for _, job := range r.jobs {
		if job.Status != domain.PDFJobPending {
			continue
		}
		copied := *job
		pending = append(pending, &copied)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })

	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r *MemoryPDFJobsRepo) MarkSucceeded(_ context.Context, jobID string) error {
	return r.markDone(jobID, domain.PDFJobSucceeded, "")
}

func (r *MemoryPDFJobsRepo) MarkFailed(_ context.Context, jobID, lastError string) error {
	return r.markDone(jobID, domain.PDFJobFailed, lastError)
}

func (r *MemoryPDFJobsRepo) markDone(jobID, status, lastError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return fmt.Errorf("pdf job not found: %w", ErrNotFound)
	}
	job.Status = status
	job.Attempts++
	job.LastError = lastError
	job.UpdatedAt = time.Now()
	return nil
}
