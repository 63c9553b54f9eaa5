package repository

import (
	"context"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// AssessmentsRepository stored clinical form data access.
// Backs the fetch-by-id PDF routes (pre-admission, infection-prevention,
// moving-handling).
type AssessmentsRepository interface {
	CreateAssessment(ctx context.Context, organizationID string, assessment *domain.Assessment) (string, error)
	GetAssessment(ctx context.Context, organizationID, assessmentID string) (*domain.Assessment, error)
	ListAssessments(ctx context.Context, organizationID string, filters AssessmentFilters) ([]*domain.Assessment, error)
	UpdateAssessment(ctx context.Context, organizationID, assessmentID string, assessment *domain.Assessment) error
	DeleteAssessment(ctx context.Context, organizationID, assessmentID string) error
}

// AssessmentFilters list filters; zero values mean "no filter".
type AssessmentFilters struct {
	ResidentID string
	FormType   string
}
