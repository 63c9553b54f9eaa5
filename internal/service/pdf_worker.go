package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/CareO-HQ/careo-sub007/internal/pdf"
	"github.com/CareO-HQ/careo-sub007/internal/repository"
	"github.com/CareO-HQ/careo-sub007/internal/store"
)

const (
	workerPollInterval = 5 * time.Second
	workerBatchSize    = 5
)

// PDFWorker drains the pdf_jobs outbox: renders each pending job's response
// to a PDF, stores the file and patches the response with the artifact
// fields. A render failure marks the job failed and leaves the response
// untouched; nothing retries failed jobs.
type PDFWorker struct {
	jobs      repository.PDFJobsRepository
	responses repository.ResponsesRepository
	templates repository.TemplatesRepository
	renderer  pdf.Renderer
	files     store.FileStore
	logger    *zap.Logger
}

func NewPDFWorker(
	jobs repository.PDFJobsRepository,
	responses repository.ResponsesRepository,
	templates repository.TemplatesRepository,
	renderer pdf.Renderer,
	files store.FileStore,
	logger *zap.Logger,
) *PDFWorker {
	return &PDFWorker{
		jobs:      jobs,
		responses: responses,
		templates: templates,
		renderer:  renderer,
		files:     files,
		logger:    logger,
	}
}

// Run polls until the context is cancelled. Call on its own goroutine.
func (w *PDFWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(workerPollInterval)
	defer ticker.Stop()

	w.logger.Info("pdf worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("pdf worker stopped")
			return
		case <-ticker.C:
			w.ProcessPending(ctx)
		}
	}
}

// ProcessPending handles one batch of pending jobs. Exported so tests can
// drive the worker without the poll loop.
func (w *PDFWorker) ProcessPending(ctx context.Context) {
	jobs, err := w.jobs.ListPending(ctx, workerBatchSize)
	if err != nil {
		w.logger.Error("failed to list pending pdf jobs", zap.Error(err))
		return
	}

	for _, job := range jobs {
		if err := w.processJob(ctx, job.JobID, job.OrganizationID, job.ResponseID); err != nil {
			w.logger.Error("pdf job failed",
				zap.String("job_id", job.JobID),
				zap.String("response_id", job.ResponseID),
				zap.Error(err))
			if markErr := w.jobs.MarkFailed(ctx, job.JobID, err.Error()); markErr != nil {
				w.logger.Error("failed to mark pdf job failed",
					zap.String("job_id", job.JobID),
					zap.Error(markErr))
			}
			continue
		}
		if err := w.jobs.MarkSucceeded(ctx, job.JobID); err != nil {
			w.logger.Error("failed to mark pdf job succeeded",
				zap.String("job_id", job.JobID),
				zap.Error(err))
		}
	}
}

func (w *PDFWorker) processJob(ctx context.Context, jobID, organizationID, responseID string) error {
	response, err := w.responses.GetResponse(ctx, organizationID, responseID)
	if err != nil {
		return err
	}
	template, err := w.templates.GetTemplate(ctx, organizationID, response.TemplateID)
	if err != nil {
		return err
	}

	html := pdf.AuditHTML(template, response)
	data, err := w.renderer.Render(ctx, html)
	if err != nil {
		return err
	}

	fileID, url, err := w.files.Save(pdf.AuditFilename(template, response), data)
	if err != nil {
		return err
	}

	generatedAt := time.Now().UTC()
	if err := w.responses.SetPDFArtifacts(ctx, organizationID, responseID, fileID, url, generatedAt); err != nil {
		return err
	}

	w.logger.Info("pdf generated",
		zap.String("job_id", jobID),
		zap.String("response_id", responseID),
		zap.String("file_id", fileID))
	return nil
}
