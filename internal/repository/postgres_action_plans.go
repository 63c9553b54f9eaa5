package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// PostgresActionPlansRepository action plans backed by action_plans.
type PostgresActionPlansRepository struct {
	db *sql.DB
}

func NewPostgresActionPlansRepository(db *sql.DB) *PostgresActionPlansRepository {
	return &PostgresActionPlansRepository{db: db}
}

var _ ActionPlansRepository = (*PostgresActionPlansRepository)(nil)

func (r *PostgresActionPlansRepository) CreatePlan(ctx context.Context, organizationID string, plan *domain.ActionPlan) (string, error) {
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

	query := `
		INSERT INTO action_plans (
			response_id, organization_id, description, assigned_to,
			due_date, priority, status, latest_comment
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING plan_id::text
	`

	var dueDate any
	if plan.DueDate != nil {
		dueDate = *plan.DueDate
	}

	var planID string
	err := r.db.QueryRowContext(ctx, query,
		plan.ResponseID, organizationID, plan.Description, nullIfEmpty(plan.AssignedTo),
		dueDate, plan.Priority, nullIfEmpty(plan.Status), nullIfEmpty(plan.LatestComment),
	).Scan(&planID)
	if err != nil {
		return "", fmt.Errorf("failed to create action plan: %w", err)
	}

	return planID, nil
}

func (r *PostgresActionPlansRepository) GetPlan(ctx context.Context, organizationID, planID string) (*domain.ActionPlan, error) {
	if organizationID == "" || planID == "" {
		return nil, fmt.Errorf("organization_id and plan_id are required: %w", ErrNotFound)
	}

	query := `
		SELECT
			plan_id::text,
			response_id::text,
			organization_id::text,
			description,
			COALESCE(assigned_to, '') AS assigned_to,
			due_date,
			priority,
			COALESCE(status, '') AS status,
			COALESCE(latest_comment, '') AS latest_comment,
			created_at,
			updated_at
		FROM action_plans
		WHERE organization_id = $1 AND plan_id = $2
	`

	var plan domain.ActionPlan
	var dueDate sql.NullTime
	err := r.db.QueryRowContext(ctx, query, organizationID, planID).Scan(
		&plan.PlanID,
		&plan.ResponseID,
		&plan.OrganizationID,
		&plan.Description,
		&plan.AssignedTo,
		&dueDate,
		&plan.Priority,
		&plan.Status,
		&plan.LatestComment,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("action plan not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get action plan: %w", err)
	}
	if dueDate.Valid {
		plan.DueDate = &dueDate.Time
	}

	return &plan, nil
}

func (r *PostgresActionPlansRepository) ListPlansByResponse(ctx context.Context, organizationID, responseID string) ([]*domain.ActionPlan, error) {
	if organizationID == "" || responseID == "" {
		return []*domain.ActionPlan{}, nil
	}

	query := `
		SELECT
			plan_id::text,
			response_id::text,
			organization_id::text,
			description,
			COALESCE(assigned_to, '') AS assigned_to,
			due_date,
			priority,
			COALESCE(status, '') AS status,
			COALESCE(latest_comment, '') AS latest_comment,
			created_at,
			updated_at
		FROM action_plans
		WHERE organization_id = $1 AND response_id = $2
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, organizationID, responseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list action plans: %w", err)
	}
	defer rows.Close()

	var plans []*domain.ActionPlan
	for rows.Next() {
		var plan domain.ActionPlan
		var dueDate sql.NullTime
		if err := rows.Scan(
			&plan.PlanID,
			&plan.ResponseID,
			&plan.OrganizationID,
			&plan.Description,
			&plan.AssignedTo,
			&dueDate,
			&plan.Priority,
			&plan.Status,
			&plan.LatestComment,
			&plan.CreatedAt,
			&plan.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan action plan: %w", err)
		}
		if dueDate.Valid {
			plan.DueDate = &dueDate.Time
		}
		plans = append(plans, &plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate action plans: %w", err)
	}

	return plans, nil
}

func (r *PostgresActionPlansRepository) UpdatePlan(ctx context.Context, organizationID, planID string, plan *domain.ActionPlan) error {
	if organizationID == "" || planID == "" {
		return fmt.Errorf("organization_id and plan_id are required")
	}
	if plan.Description == "" {
		return fmt.Errorf("description is required")
	}
	if !domain.ValidPriority(plan.Priority) {
		return fmt.Errorf("invalid priority: %q", plan.Priority)
	}

	query := `
		UPDATE action_plans
		SET description = $3,
		    assigned_to = $4,
		    due_date = $5,
		    priority = $6,
		    status = $7,
		    latest_comment = $8,
		    updated_at = NOW()
		WHERE organization_id = $1 AND plan_id = $2
	`

	var dueDate any
	if plan.DueDate != nil {
		dueDate = *plan.DueDate
	}

	result, err := r.db.ExecContext(ctx, query,
		organizationID, planID, plan.Description, nullIfEmpty(plan.AssignedTo),
		dueDate, plan.Priority, nullIfEmpty(plan.Status), nullIfEmpty(plan.LatestComment),
	)
	if err != nil {
		return fmt.Errorf("failed to update action plan: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("action plan not found: %w", ErrNotFound)
	}

	return nil
}

func (r *PostgresActionPlansRepository) DeletePlan(ctx context.Context, organizationID, planID string) error {
	if organizationID == "" || planID == "" {
		return fmt.Errorf("organization_id and plan_id are required")
	}

	query := `
		DELETE FROM action_plans
		WHERE organization_id = $1 AND plan_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, organizationID, planID)
	if err != nil {
		return fmt.Errorf("failed to delete action plan: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("action plan not found: %w", ErrNotFound)
	}

	return nil
}
