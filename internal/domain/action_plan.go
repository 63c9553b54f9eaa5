package domain

import "time"

// ActionPlan follow-up task attached to an audit response (action_plans table).
// Owned by exactly one response; deleting the response cascades its plans.
type ActionPlan struct {
	PlanID         string `db:"plan_id"`         // UUID, PRIMARY KEY
	ResponseID     string `db:"response_id"`     // UUID, NOT NULL, FK -> audit_responses ON DELETE CASCADE
	OrganizationID string `db:"organization_id"` // UUID, NOT NULL

	Description   string     `db:"description"`    // TEXT, NOT NULL
	AssignedTo    string     `db:"assigned_to"`    // VARCHAR(200), nullable
	DueDate       *time.Time `db:"due_date"`       // DATE, nullable
	Priority      string     `db:"priority"`       // VARCHAR(10), NOT NULL (Low/Medium/High)
	Status        string     `db:"status"`         // VARCHAR(20), nullable (pending/in_progress/completed/overdue)
	LatestComment string     `db:"latest_comment"` // TEXT, nullable

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

const (
	PlanPending    = "pending"
	PlanInProgress = "in_progress"
	PlanCompleted  = "completed"
	PlanOverdue    = "overdue"
)

// ValidPriority reports whether the value is a known plan priority.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}
