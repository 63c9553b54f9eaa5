package repository

import (
	"context"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// ActionPlansRepository follow-up task data access.
// Organization-scoped like everything else; plans live under one response.
type ActionPlansRepository interface {
	CreatePlan(ctx context.Context, organizationID string, plan *domain.ActionPlan) (string, error)
	GetPlan(ctx context.Context, organizationID, planID string) (*domain.ActionPlan, error)
	ListPlansByResponse(ctx context.Context, organizationID, responseID string) ([]*domain.ActionPlan, error)
	UpdatePlan(ctx context.Context, organizationID, planID string, plan *domain.ActionPlan) error
	DeletePlan(ctx context.Context, organizationID, planID string) error
}
