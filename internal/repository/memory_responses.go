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

// MemoryAuditRepo in-memory ResponsesRepository + ActionPlansRepository.
// Responses and their action plans live together so DeleteResponse can
// cascade the same way the Postgres FK does. Used for DB-less runs and in
// unit tests.
type MemoryAuditRepo struct {
	mu        sync.RWMutex
	responses map[string]map[string]*domain.AuditResponse // organizationID -> responseID -> response
	plans     map[string]map[string]*domain.ActionPlan    // organizationID -> planID -> plan
}

func NewMemoryAuditRepo() *MemoryAuditRepo {
	return &MemoryAuditRepo{
		responses: map[string]map[string]*domain.AuditResponse{},
		plans:     map[string]map[string]*domain.ActionPlan{},
	}
}

var (
	_ ResponsesRepository   = (*MemoryAuditRepo)(nil)
	_ ActionPlansRepository = (*MemoryAuditRepo)(nil)
)

// ---- responses ----

func (r *MemoryAuditRepo) GetResponse(_ context.Context, organizationID, responseID string) (*domain.AuditResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resp, ok := r.responses[organizationID][responseID]
	if !ok {
		return nil, fmt.Errorf("response not found: %w", ErrNotFound)
	}
	out := *resp
	return &out, nil
}

func (r *MemoryAuditRepo) FindOpenResponse(_ context.Context, organizationID, templateID string) (*domain.AuditResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, resp := range r.responses[organizationID] {
		if resp.TemplateID == templateID && resp.Open() {
			out := *resp
			return &out, nil
		}
	}
	return nil, fmt.Errorf("no open response: %w", ErrNotFound)
}

func (r *MemoryAuditRepo) CreateResponse(_ context.Context, organizationID string, resp *domain.AuditResponse) (string, error) {
	if organizationID == "" {
		return "", fmt.Errorf("organization_id is required")
	}
	if resp.TemplateID == "" {
		return "", fmt.Errorf("template_id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.responses[organizationID] == nil {
		r.responses[organizationID] = map[string]*domain.AuditResponse{}
	}

	stored := *resp
	if stored.Status == "" {
		stored.Status = domain.ResponseDraft
	}
	// Mirror the partial unique index: one open row per (template, organization).
	if stored.Open() {
		for _, existing := range r.responses[organizationID] {
			if existing.TemplateID == stored.TemplateID && existing.Open() {
				return "", fmt.Errorf("failed to create response: %w", ErrOpenDraftExists)
			}
		}
	}

	now := time.Now()
	stored.ResponseID = uuid.NewString()
	stored.OrganizationID = organizationID
	if stored.Items == nil {
		stored.Items = []domain.ResponseItem{}
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.responses[organizationID][stored.ResponseID] = &stored

	return stored.ResponseID, nil
}

func (r *MemoryAuditRepo) UpdateResponse(_ context.Context, organizationID, responseID string, resp *domain.AuditResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.responses[organizationID][responseID]
	if !ok {
		return fmt.Errorf("response not found: %w", ErrNotFound)
	}

	existing.Items = resp.Items
	if existing.Items == nil {
		existing.Items = []domain.ResponseItem{}
	}
	existing.OverallNotes = resp.OverallNotes
	existing.AuditedBy = resp.AuditedBy
	existing.Status = resp.Status
	existing.UpdatedAt = time.Now()

	return nil
}

func (r *MemoryAuditRepo) CompleteResponse(_ context.Context, organizationID, responseID string, items []domain.ResponseItem, overallNotes string, completedAt, nextAuditDue time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.responses[organizationID][responseID]
	if !ok {
		return fmt.Errorf("response not found: %w", ErrNotFound)
	}

	if items == nil {
		items = []domain.ResponseItem{}
	}
	existing.Items = items
	existing.OverallNotes = overallNotes
	existing.Status = domain.ResponseCompleted
	completed := completedAt
	due := nextAuditDue
	existing.CompletedAt = &completed
	existing.NextAuditDue = &due
	existing.UpdatedAt = time.Now()

	return nil
}

func (r *MemoryAuditRepo) supersededLocked(organizationID, responseID string) bool {
	for _, resp := range r.responses[organizationID] {
		if resp.Supersedes == responseID {
			return true
		}
	}
	return false
}

func (r *MemoryAuditRepo) ListCompleted(_ context.Context, organizationID, templateID, residentID string, limit int) ([]*domain.AuditResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.AuditResponse
	for _, resp := range r.responses[organizationID] {
		if resp.TemplateID != templateID || resp.Status != domain.ResponseCompleted {
			continue
		}
		if residentID != "" && resp.ResidentID != residentID {
			continue
		}
		if r.supersededLocked(organizationID, resp.ResponseID) {
			continue
		}
		copied := *resp
		out = append(out, &copied)
	}

	sortByCompletedAtDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryAuditRepo) ListCompletedByOrganization(_ context.Context, organizationID string) ([]*domain.AuditResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.AuditResponse
	for _, resp := range r.responses[organizationID] {
		if resp.Status != domain.ResponseCompleted {
			continue
		}
		if r.supersededLocked(organizationID, resp.ResponseID) {
			continue
		}
		copied := *resp
		out = append(out, &copied)
	}

	sortByCompletedAtDesc(out)
	return out, nil
}

func (r *MemoryAuditRepo) ListArchived(_ context.Context, organizationID, templateID, residentID string) ([]*domain.AuditResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.AuditResponse
	for _, resp := range r.responses[organizationID] {
		if resp.TemplateID != templateID || resp.Status != domain.ResponseCompleted {
			continue
		}
		if residentID != "" && resp.ResidentID != residentID {
			continue
		}
		if !r.supersededLocked(organizationID, resp.ResponseID) {
			continue
		}
		copied := *resp
		out = append(out, &copied)
	}

	sortByCompletedAtDesc(out)
	return out, nil
}

func (r *MemoryAuditRepo) DeleteResponse(_ context.Context, organizationID, responseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.responses[organizationID][responseID]; !ok {
		return fmt.Errorf("response not found: %w", ErrNotFound)
	}
	delete(r.responses[organizationID], responseID)

	// cascade, same as the FK
	for planID, plan := range r.plans[organizationID] {
		if plan.ResponseID == responseID {
			delete(r.plans[organizationID], planID)
		}
	}
	return nil
}

func (r *MemoryAuditRepo) SetPDFArtifacts(_ context.Context, organizationID, responseID, fileID, url string, generatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.responses[organizationID][responseID]
	if !ok {
		return fmt.Errorf("response not found: %w", ErrNotFound)
	}
	existing.PDFFileID = fileID
	existing.PDFURL = url
	at := generatedAt
	existing.PDFGeneratedAt = &at
	existing.UpdatedAt = time.Now()
	return nil
}

func sortByCompletedAtDesc(responses []*domain.AuditResponse) {
	sort.Slice(responses, func(i, j int) bool {
		var ti, tj time.Time
		if responses[i].CompletedAt != nil {
			ti = *responses[i].CompletedAt
		}
		if responses[j].CompletedAt != nil {
			tj = *responses[j].CompletedAt
		}
		return ti.After(tj)
	})
}

// ---- action plans ----

func (r *MemoryAuditRepo) CreatePlan(_ context.Context, organizationID string, plan *domain.ActionPlan) (string, error) {
	if organizationID == "" {
		return "", fmt.Errorf("organization_id is required")
	}
	if plan.ResponseID == "" {
		return "", fmt.Errorf("response_id is required")
	}
	if plan.Description == "" {
		return "", fmt.Errorf("description is required")
	}
	if !domain.ValidPriority(plan.Priority) {
		return "", fmt.Errorf("invalid priority: %q", plan.Priority)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.responses[organizationID][plan.ResponseID]; !ok {
		return "", fmt.Errorf("response not found: %w", ErrNotFound)
	}
	if r.plans[organizationID] == nil {
		r.plans[organizationID] = map[string]*domain.ActionPlan{}
	}

	now := time.Now()
	stored := *plan
	stored.PlanID = uuid.NewString()
	stored.OrganizationID = organizationID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.plans[organizationID][stored.PlanID] = &stored

	return stored.PlanID, nil
}

func (r *MemoryAuditRepo) GetPlan(_ context.Context, organizationID, planID string) (*domain.ActionPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plan, ok := r.plans[organizationID][planID]
	if !ok {
		return nil, fmt.Errorf("action plan not found: %w", ErrNotFound)
	}
	out := *plan
	return &out, nil
}

func (r *MemoryAuditRepo) ListPlansByResponse(_ context.Context, organizationID, responseID string) ([]*domain.ActionPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.ActionPlan
	for _, plan := range r.plans[organizationID] {
		if plan.ResponseID == responseID {
			copied := *plan
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryAuditRepo) UpdatePlan(_ context.Context, organizationID, planID string, plan *domain.ActionPlan) error {
	if plan.Description == "" {
		return fmt.Errorf("description is required")
	}
	if !domain.ValidPriority(plan.Priority) {
		return fmt.Errorf("invalid priority: %q", plan.Priority)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.plans[organizationID][planID]
	if !ok {
		return fmt.Errorf("action plan not found: %w", ErrNotFound)
	}

	existing.Description = plan.Description
	existing.AssignedTo = plan.AssignedTo
	existing.DueDate = plan.DueDate
	existing.Priority = plan.Priority
	existing.Status = plan.Status
	existing.LatestComment = plan.LatestComment
	existing.UpdatedAt = time.Now()

	return nil
}

func (r *MemoryAuditRepo) DeletePlan(_ context.Context, organizationID, planID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plans[organizationID][planID]; !ok {
		return fmt.Errorf("action plan not found: %w", ErrNotFound)
	}
	delete(r.plans[organizationID], planID)
	return nil
}
