package domain

import "time"

// Incident incident / hospital-transfer log entry (incidents table).
// Feeds the NHS/Trust report PDF route.
type Incident struct {
	IncidentID     string `db:"incident_id"`     // UUID, PRIMARY KEY
	OrganizationID string `db:"organization_id"` // UUID, NOT NULL
	ResidentID     string `db:"resident_id"`     // UUID, nullable

	IncidentType string     `db:"incident_type"` // VARCHAR(50), NOT NULL (fall/medication-error/hospital-transfer/...)
	Severity     string     `db:"severity"`      // VARCHAR(20), NOT NULL (low/moderate/severe)
	Description  string     `db:"description"`   // TEXT, NOT NULL
	Location     string     `db:"location"`      // VARCHAR(200), nullable
	OccurredAt   time.Time  `db:"occurred_at"`   // TIMESTAMPTZ, NOT NULL
	ReportedBy   string     `db:"reported_by"`   // VARCHAR(200), nullable
	ReportedAt   *time.Time `db:"reported_at"`   // TIMESTAMPTZ, nullable

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const (
	SeverityLow      = "low"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)
