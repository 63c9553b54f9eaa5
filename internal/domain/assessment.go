package domain

import (
	"encoding/json"
	"time"
)

// Assessment stored clinical form instance (assessments table).
// Each form type keeps its own JSON shape; the server treats the payload as
// opaque except for the fields the matching PDF template reads.
type Assessment struct {
	AssessmentID   string `db:"assessment_id"`   // UUID, PRIMARY KEY
	OrganizationID string `db:"organization_id"` // UUID, NOT NULL
	ResidentID     string `db:"resident_id"`     // UUID, nullable

	FormType string          `db:"form_type"` // VARCHAR(50), NOT NULL (pre-admission/infection-prevention/moving-handling/...)
	Data     json.RawMessage `db:"data"`      // JSONB, NOT NULL

	CreatedBy string    `db:"created_by"` // VARCHAR(200), nullable
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Form types backing the fetch-by-id PDF routes.
const (
	FormPreAdmission        = "pre-admission"
	FormInfectionPrevention = "infection-prevention"
	FormMovingHandling      = "moving-handling"
)
