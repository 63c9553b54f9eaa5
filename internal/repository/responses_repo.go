package repository

import (
	"context"
	"time"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// ResponsesRepository audit response (completion) data access.
//
// The versioning rules live here as query semantics:
//   - a row is "superseded" when another row's supersedes column points at it;
//   - ListCompleted excludes superseded rows (they only show up in
//     ListArchived), so "latest" and "history" always see the corrected
//     version of each completion;
//   - at most one open (draft/in_progress) row exists per
//     (template, organization); the partial unique index enforces it and
//     CreateResponse surfaces the violation as ErrOpenDraftExists.
type ResponsesRepository interface {
	GetResponse(ctx context.Context, organizationID, responseID string) (*domain.AuditResponse, error)

	// FindOpenResponse returns the draft/in_progress row for the
	// (template, organization) pair, or ErrNotFound.
	FindOpenResponse(ctx context.Context, organizationID, templateID string) (*domain.AuditResponse, error)

	CreateResponse(ctx context.Context, organizationID string, resp *domain.AuditResponse) (string, error)

	// UpdateResponse overwrites items/overall_notes/audited_by/status on an
	// open row (autosave, last write wins). The status transition is not
	// validated here; the service layer rejects writes to completed rows.
	UpdateResponse(ctx context.Context, organizationID, responseID string, resp *domain.AuditResponse) error

	// CompleteResponse stamps status=completed, completed_at and
	// next_audit_due in one statement. Fails with ErrNotFound when the row
	// does not exist in the organization.
	CompleteResponse(ctx context.Context, organizationID, responseID string, items []domain.ResponseItem, overallNotes string, completedAt, nextAuditDue time.Time) error

	// ListCompleted returns completed, non-superseded rows for a template,
	// newest completed_at first. residentID narrows to one resident when
	// non-empty. limit <= 0 means no cap.
	ListCompleted(ctx context.Context, organizationID, templateID, residentID string, limit int) ([]*domain.AuditResponse, error)

	// ListCompletedByOrganization returns every completed, non-superseded
	// row for the organization, newest first. The all-latest reduction is
	// done by the service.
	ListCompletedByOrganization(ctx context.Context, organizationID string) ([]*domain.AuditResponse, error)

	// ListArchived returns the superseded rows for a template, newest first.
	ListArchived(ctx context.Context, organizationID, templateID, residentID string) ([]*domain.AuditResponse, error)

	// DeleteResponse hard-deletes the row. Action plans cascade.
	DeleteResponse(ctx context.Context, organizationID, responseID string) error

	// SetPDFArtifacts patches the pdf_* columns after rendering.
	SetPDFArtifacts(ctx context.Context, organizationID, responseID, fileID, url string, generatedAt time.Time) error
}
