package domain

import (
	"fmt"
	"time"
)

// TemplateItem one checklist item definition inside a template.
// Stored as a JSONB array on the template row; order is the array order.
type TemplateItem struct {
	ItemID string `json:"item_id"`
	Label  string `json:"label"`
}

// AuditTemplate named, organization-scoped audit definition (audit_templates table).
// Items may be empty at creation and populated later. Edits to
// name/description/items apply in place and are not versioned: past
// completions keep their own item snapshots.
type AuditTemplate struct {
	TemplateID     string `db:"template_id"`     // UUID, PRIMARY KEY
	OrganizationID string `db:"organization_id"` // UUID, NOT NULL

	Name        string `db:"name"`        // VARCHAR(200), NOT NULL
	Description string `db:"description"` // TEXT, nullable

	Items     []TemplateItem `db:"items"`     // JSONB, NOT NULL, DEFAULT '[]'
	Frequency string         `db:"frequency"` // VARCHAR(20), NOT NULL (monthly/quarterly/3months/6months/yearly)

	TeamID    string `db:"team_id"`    // VARCHAR(100), nullable
	CreatedBy string `db:"created_by"` // VARCHAR(200), nullable

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Review frequencies. 3months and quarterly are distinct template-facing
// values (care-file vs governance templates) that map to the same interval.
const (
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
	Frequency3Months   = "3months"
	Frequency6Months   = "6months"
	FrequencyYearly    = "yearly"
)

// frequencyIntervals next-due lookup table. Computed once at completion
// time; never recomputed when a template's frequency later changes.
var frequencyIntervals = map[string]time.Duration{
	FrequencyMonthly:   30 * 24 * time.Hour,
	FrequencyQuarterly: 90 * 24 * time.Hour,
	Frequency3Months:   90 * 24 * time.Hour,
	Frequency6Months:   180 * 24 * time.Hour,
	FrequencyYearly:    365 * 24 * time.Hour,
}

// IntervalFor returns the review interval for a frequency value.
func IntervalFor(frequency string) (time.Duration, error) {
	d, ok := frequencyIntervals[frequency]
	if !ok {
		return 0, fmt.Errorf("unknown audit frequency: %q", frequency)
	}
	return d, nil
}

// ValidFrequency reports whether the value is a known review frequency.
func ValidFrequency(frequency string) bool {
	_, ok := frequencyIntervals[frequency]
	return ok
}
