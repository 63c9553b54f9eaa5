package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
	"github.com/CareO-HQ/careo-sub007/internal/repository"
)

// defaultHistoryLimit cap on CompletionHistory when the caller passes none.
const defaultHistoryLimit = 10

// AuditService business rules over templates, completions, revisions and
// action plans. Repositories are organization-scoped; the service adds the
// lifecycle rules (draft idempotence, completion stamping, version chains)
// and the explicit cross-record ownership checks.
type AuditService struct {
	templates repository.TemplatesRepository
	responses repository.ResponsesRepository
	plans     repository.ActionPlansRepository
	residents repository.ResidentsRepository
	jobs      repository.PDFJobsRepository

	notifier   CompletionNotifier
	pdfEnabled bool

	logger *zap.Logger
}

// CompletionNotifier receives audit-completed events. Implementations must
// not block: completion never waits on a notification.
type CompletionNotifier interface {
	AuditCompleted(event CompletionEvent)
}

// CompletionEvent webhook payload for a completed audit.
type CompletionEvent struct {
	OrganizationID string     `json:"organization_id"`
	TemplateID     string     `json:"template_id"`
	TemplateName   string     `json:"template_name"`
	ResponseID     string     `json:"response_id"`
	ResidentID     string     `json:"resident_id,omitempty"`
	AuditedBy      string     `json:"audited_by,omitempty"`
	CompletedAt    time.Time  `json:"completed_at"`
	NextAuditDue   *time.Time `json:"next_audit_due,omitempty"`
}

func NewAuditService(
	templates repository.TemplatesRepository,
	responses repository.ResponsesRepository,
	plans repository.ActionPlansRepository,
	residents repository.ResidentsRepository,
	jobs repository.PDFJobsRepository,
	notifier CompletionNotifier,
	pdfEnabled bool,
	logger *zap.Logger,
) *AuditService {
	return &AuditService{
		templates:  templates,
		responses:  responses,
		plans:      plans,
		residents:  residents,
		jobs:       jobs,
		notifier:   notifier,
		pdfEnabled: pdfEnabled,
		logger:     logger,
	}
}

// GetOrCreateDraft returns the open response for (template, organization) or
// inserts a new draft seeded from the template's current items. Sequential
// calls return the same row; a concurrent race loses to the partial unique
// index and re-reads the winner.
func (s *AuditService) GetOrCreateDraft(ctx context.Context, organizationID, templateID, residentID, auditedBy string) (*domain.AuditResponse, error) {
	template, err := s.templates.GetTemplate(ctx, organizationID, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	if err := s.checkOwnership(organizationID, template.OrganizationID); err != nil {
		return nil, err
	}
	if residentID != "" {
		resident, err := s.residents.GetResident(ctx, organizationID, residentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load resident: %w", err)
		}
		if err := s.checkOwnership(organizationID, resident.OrganizationID); err != nil {
			return nil, err
		}
	}

	open, err := s.responses.FindOpenResponse(ctx, organizationID, templateID)
	if err == nil {
		return open, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up open response: %w", err)
	}

	items := make([]domain.ResponseItem, 0, len(template.Items))
	for _, item := range template.Items {
		items = append(items, domain.ResponseItem{
			ItemID:   item.ItemID,
			ItemName: item.Label,
			Status:   domain.ItemUnchecked,
		})
	}

	draft := &domain.AuditResponse{
		TemplateID: templateID,
		ResidentID: residentID,
		Items:      items,
		AuditedBy:  auditedBy,
		Status:     domain.ResponseDraft,
	}
	responseID, err := s.responses.CreateResponse(ctx, organizationID, draft)
	if errors.Is(err, repository.ErrOpenDraftExists) {
		// Lost the race: another caller inserted first. Return theirs.
		return s.responses.FindOpenResponse(ctx, organizationID, templateID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}

	return s.responses.GetResponse(ctx, organizationID, responseID)
}

// UpdateResponse autosave overwrite of an open response. Rejected once the
// row is completed; corrections go through CreateRevision instead.
func (s *AuditService) UpdateResponse(ctx context.Context, organizationID, responseID string, items []domain.ResponseItem, overallNotes, status string) error {
	response, err := s.responses.GetResponse(ctx, organizationID, responseID)
	if err != nil {
		return fmt.Errorf("failed to load response: %w", err)
	}
	if err := s.checkOwnership(organizationID, response.OrganizationID); err != nil {
		return err
	}
	if !response.Open() {
		return fmt.Errorf("response %s is completed and cannot be updated", responseID)
	}
	if status == "" {
		status = response.Status
	}
	if status != domain.ResponseDraft && status != domain.ResponseInProgress {
		return fmt.Errorf("invalid autosave status %q", status)
	}

	response.Items = items
	response.OverallNotes = overallNotes
	response.Status = status
	if err := s.responses.UpdateResponse(ctx, organizationID, responseID, response); err != nil {
		return fmt.Errorf("failed to update response: %w", err)
	}
	return nil
}

// CompleteAudit freezes the response: stamps completed_at, computes
// next_audit_due from the template frequency, enqueues the PDF job and
// fires the completion webhook. The two side effects never fail the
// completion itself.
func (s *AuditService) CompleteAudit(ctx context.Context, organizationID, responseID string, items []domain.ResponseItem, overallNotes string) (*domain.AuditResponse, error) {
	response, err := s.responses.GetResponse(ctx, organizationID, responseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load response: %w", err)
	}
	if err := s.checkOwnership(organizationID, response.OrganizationID); err != nil {
		return nil, err
	}
	if !response.Open() {
		return nil, fmt.Errorf("response %s is already completed", responseID)
	}

	template, err := s.templates.GetTemplate(ctx, organizationID, response.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	interval, err := domain.IntervalFor(template.Frequency)
	if err != nil {
		return nil, err
	}

	completedAt := time.Now().UTC()
	nextAuditDue := completedAt.Add(interval)
	if err := s.responses.CompleteResponse(ctx, organizationID, responseID, items, overallNotes, completedAt, nextAuditDue); err != nil {
		return nil, fmt.Errorf("failed to complete response: %w", err)
	}

	completed, err := s.responses.GetResponse(ctx, organizationID, responseID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload completed response: %w", err)
	}

	if s.pdfEnabled && s.jobs != nil {
		if _, err := s.jobs.Enqueue(ctx, organizationID, responseID); err != nil {
			s.logger.Error("failed to enqueue pdf job",
				zap.String("response_id", responseID),
				zap.Error(err))
		}
	}
	if s.notifier != nil {
		s.notifier.AuditCompleted(CompletionEvent{
			OrganizationID: organizationID,
			TemplateID:     template.TemplateID,
			TemplateName:   template.Name,
			ResponseID:     responseID,
			ResidentID:     completed.ResidentID,
			AuditedBy:      completed.AuditedBy,
			CompletedAt:    completedAt,
			NextAuditDue:   &nextAuditDue,
		})
	}

	return completed, nil
}

// CreateRevision corrects a completed response by inserting a new completed
// row carrying a supersedes back-reference. The original row is untouched
// and moves to the archived listing.
func (s *AuditService) CreateRevision(ctx context.Context, organizationID, responseID string, items []domain.ResponseItem, overallNotes, auditedBy string) (*domain.AuditResponse, error) {
	original, err := s.responses.GetResponse(ctx, organizationID, responseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load response: %w", err)
	}
	if err := s.checkOwnership(organizationID, original.OrganizationID); err != nil {
		return nil, err
	}
	if original.Status != domain.ResponseCompleted {
		return nil, fmt.Errorf("only completed responses can be revised")
	}

	completedAt := time.Now().UTC()
	revision := &domain.AuditResponse{
		TemplateID:   original.TemplateID,
		ResidentID:   original.ResidentID,
		Items:        items,
		OverallNotes: overallNotes,
		AuditedBy:    auditedBy,
		Status:       domain.ResponseCompleted,
		CompletedAt:  &completedAt,
		NextAuditDue: original.NextAuditDue,
		Supersedes:   responseID,
	}
	revisionID, err := s.responses.CreateResponse(ctx, organizationID, revision)
	if err != nil {
		return nil, fmt.Errorf("failed to create revision: %w", err)
	}

	return s.responses.GetResponse(ctx, organizationID, revisionID)
}

// GetResponse org-checked single-row read.
func (s *AuditService) GetResponse(ctx context.Context, organizationID, responseID string) (*domain.AuditResponse, error) {
	response, err := s.responses.GetResponse(ctx, organizationID, responseID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(organizationID, response.OrganizationID); err != nil {
		return nil, err
	}
	return response, nil
}

// LatestCompletion returns the completed, non-superseded row with the
// greatest completed_at, or ErrNotFound when none exists.
func (s *AuditService) LatestCompletion(ctx context.Context, organizationID, templateID, residentID string) (*domain.AuditResponse, error) {
	rows, err := s.responses.ListCompleted(ctx, organizationID, templateID, residentID, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no completed audit for template %s: %w", templateID, repository.ErrNotFound)
	}
	return rows[0], nil
}

// CompletionHistory returns completed rows after the latest, newest first,
// capped at limit (default 10).
func (s *AuditService) CompletionHistory(ctx context.Context, organizationID, templateID, residentID string, limit int) ([]*domain.AuditResponse, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := s.responses.ListCompleted(ctx, organizationID, templateID, residentID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	if len(rows) <= 1 {
		return []*domain.AuditResponse{}, nil
	}
	history := rows[1:]
	if len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

// AllLatestCompletions returns the latest completion per (template,
// resident) pair across the organization. First seen wins after the
// descending completed_at sort.
func (s *AuditService) AllLatestCompletions(ctx context.Context, organizationID string) ([]*domain.AuditResponse, error) {
	rows, err := s.responses.ListCompletedByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}

	seen := map[string]bool{}
	var latest []*domain.AuditResponse
	for _, row := range rows {
		key := row.TemplateID + "|" + row.ResidentID
		if seen[key] {
			continue
		}
		seen[key] = true
		latest = append(latest, row)
	}
	return latest, nil
}

// CompletedForTemplate returns every completed, non-superseded row for a
// template, newest first. Feeds the Excel export.
func (s *AuditService) CompletedForTemplate(ctx context.Context, organizationID, templateID, residentID string) ([]*domain.AuditResponse, error) {
	return s.responses.ListCompleted(ctx, organizationID, templateID, residentID, 0)
}

// ArchivedCompletions returns the superseded rows for a template, newest
// first. This is the only listing where superseded versions appear.
func (s *AuditService) ArchivedCompletions(ctx context.Context, organizationID, templateID, residentID string) ([]*domain.AuditResponse, error) {
	return s.responses.ListArchived(ctx, organizationID, templateID, residentID)
}

// DeleteResponse org-checked hard delete. Action plans cascade.
func (s *AuditService) DeleteResponse(ctx context.Context, organizationID, responseID string) error {
	response, err := s.responses.GetResponse(ctx, organizationID, responseID)
	if err != nil {
		return fmt.Errorf("failed to load response: %w", err)
	}
	if err := s.checkOwnership(organizationID, response.OrganizationID); err != nil {
		return err
	}
	return s.responses.DeleteResponse(ctx, organizationID, responseID)
}

// CreateActionPlan attaches a follow-up task to a response.
func (s *AuditService) CreateActionPlan(ctx context.Context, organizationID string, plan *domain.ActionPlan) (*domain.ActionPlan, error) {
	if plan.Description == "" {
		return nil, fmt.Errorf("description is required")
	}
	if plan.Priority == "" {
		plan.Priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(plan.Priority) {
		return nil, fmt.Errorf("invalid priority %q", plan.Priority)
	}
	if plan.Status == "" {
		plan.Status = domain.PlanPending
	}

	response, err := s.responses.GetResponse(ctx, organizationID, plan.ResponseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load response: %w", err)
	}
	if err := s.checkOwnership(organizationID, response.OrganizationID); err != nil {
		return nil, err
	}

	planID, err := s.plans.CreatePlan(ctx, organizationID, plan)
	if err != nil {
		return nil, fmt.Errorf("failed to create action plan: %w", err)
	}
	return s.plans.GetPlan(ctx, organizationID, planID)
}

// ListActionPlans returns the plans under a response, org-checked.
func (s *AuditService) ListActionPlans(ctx context.Context, organizationID, responseID string) ([]*domain.ActionPlan, error) {
	response, err := s.responses.GetResponse(ctx, organizationID, responseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load response: %w", err)
	}
	if err := s.checkOwnership(organizationID, response.OrganizationID); err != nil {
		return nil, err
	}
	return s.plans.ListPlansByResponse(ctx, organizationID, responseID)
}

// UpdateActionPlan edits a plan in place.
func (s *AuditService) UpdateActionPlan(ctx context.Context, organizationID, planID string, plan *domain.ActionPlan) (*domain.ActionPlan, error) {
	existing, err := s.plans.GetPlan(ctx, organizationID, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load action plan: %w", err)
	}
	if err := s.checkOwnership(organizationID, existing.OrganizationID); err != nil {
		return nil, err
	}
	if plan.Description == "" {
		plan.Description = existing.Description
	}
	if plan.Priority == "" {
		plan.Priority = existing.Priority
	}
	if !domain.ValidPriority(plan.Priority) {
		return nil, fmt.Errorf("invalid priority %q", plan.Priority)
	}
	if plan.Status == "" {
		plan.Status = existing.Status
	}

	if err := s.plans.UpdatePlan(ctx, organizationID, planID, plan); err != nil {
		return nil, fmt.Errorf("failed to update action plan: %w", err)
	}
	return s.plans.GetPlan(ctx, organizationID, planID)
}

// DeleteActionPlan removes one plan; the parent response stays.
func (s *AuditService) DeleteActionPlan(ctx context.Context, organizationID, planID string) error {
	existing, err := s.plans.GetPlan(ctx, organizationID, planID)
	if err != nil {
		return fmt.Errorf("failed to load action plan: %w", err)
	}
	if err := s.checkOwnership(organizationID, existing.OrganizationID); err != nil {
		return err
	}
	return s.plans.DeletePlan(ctx, organizationID, planID)
}

// checkOwnership compares a loaded record's organization against the
// caller's. Repository queries are organization-scoped, so cross-org ids
// already surface as ErrNotFound; a mismatch here means a lookup bypassed
// that scoping and gets the 403 mapping instead of an empty result.
func (s *AuditService) checkOwnership(callerOrg, recordOrg string) error {
	if recordOrg != "" && recordOrg != callerOrg {
		return fmt.Errorf("record belongs to another organization: %w", repository.ErrOrganizationMismatch)
	}
	return nil
}
