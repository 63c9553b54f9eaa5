package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// MemoryAssessmentsRepo in-memory AssessmentsRepository.
type MemoryAssessmentsRepo struct {
	mu          sync.RWMutex
	assessments map[string]map[string]*domain.Assessment // organizationID -> assessmentID -> assessment
}

func NewMemoryAssessmentsRepo() *MemoryAssessmentsRepo {
	return &MemoryAssessmentsRepo{assessments: map[string]map[string]*domain.Assessment{}}
}

var _ AssessmentsRepository = (*MemoryAssessmentsRepo)(nil)

func (r *MemoryAssessmentsRepo) CreateAssessment(_ context.Context, organizationID string, assessment *domain.Assessment) (string, error) {
	if organizationID == "" {
		return "", fmt.Errorf("organization_id is required")
	}
	if assessment.FormType == "" {
		return "", fmt.Errorf("form_type is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.assessments[organizationID] == nil {
		r.assessments[organizationID] = map[string]*domain.Assessment{}
	}

	now := time.Now()
	stored := *assessment
	stored.AssessmentID = uuid.NewString()
	stored.OrganizationID = organizationID
	if len(stored.Data) == 0 {
		stored.Data = json.RawMessage("{}")
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.assessments[organizationID][stored.AssessmentID] = &stored

	return stored.AssessmentID, nil
}

func (r *MemoryAssessmentsRepo) GetAssessment(_ context.Context, organizationID, assessmentID string) (*domain.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assessment, ok := r.assessments[organizationID][assessmentID]
	if !ok {
		return nil, fmt.Errorf("assessment not found: %w", ErrNotFound)
	}
	out := *assessment
	return &out, nil
}

func (r *MemoryAssessmentsRepo) ListAssessments(_ context.Context, organizationID string, filters AssessmentFilters) ([]*domain.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Assessment
	for _, assessment := range r.assessments[organizationID] {
		if filters.ResidentID != "" && assessment.ResidentID != filters.ResidentID {
			continue
		}
		if filters.FormType != "" && assessment.FormType != filters.FormType {
			continue
		}
		copied := *assessment
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryAssessmentsRepo) UpdateAssessment(_ context.Context, organizationID, assessmentID string, assessment *domain.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.assessments[organizationID][assessmentID]
	if !ok {
		return fmt.Errorf("assessment not found: %w", ErrNotFound)
	}
	if len(assessment.Data) > 0 {
		existing.Data = assessment.Data
	}
	existing.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryAssessmentsRepo) DeleteAssessment(_ context.Context, organizationID, assessmentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.assessments[organizationID][assessmentID]; !ok {
		return fmt.Errorf("assessment not found: %w", ErrNotFound)
	}
	delete(r.assessments[organizationID], assessmentID)
	return nil
}
