package domain

import "time"

// ResponseItem per-item answer snapshot taken at save time.
// item_name is copied from the template so later template edits do not
// rewrite history.
type ResponseItem struct {
	ItemID   string     `json:"item_id"`
	ItemName string     `json:"item_name"`
	Status   string     `json:"status"` // compliant/non-compliant/not-applicable/checked/unchecked
	Notes    string     `json:"notes,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
}

// Item answer statuses. Which subset applies is domain-dependent
// (compliance audits vs simple checklists); the store accepts all five.
const (
	ItemCompliant     = "compliant"
	ItemNonCompliant  = "non-compliant"
	ItemNotApplicable = "not-applicable"
	ItemChecked       = "checked"
	ItemUnchecked     = "unchecked"
)

// AuditResponse one audit attempt against a template (audit_responses table).
//
// Lifecycle: draft -> in_progress -> completed. While open the row is an
// autosave target (last write wins). Once completed the row is frozen:
// corrections insert a brand-new completed row carrying Supersedes, and the
// old row becomes visible only through the archived listing.
type AuditResponse struct {
	ResponseID     string `db:"response_id"`     // UUID, PRIMARY KEY
	TemplateID     string `db:"template_id"`     // UUID, NOT NULL (no FK cascade from templates)
	OrganizationID string `db:"organization_id"` // UUID, NOT NULL
	ResidentID     string `db:"resident_id"`     // UUID, nullable (resident-scoped audits only)

	Items        []ResponseItem `db:"items"`         // JSONB, NOT NULL, DEFAULT '[]'
	OverallNotes string         `db:"overall_notes"` // TEXT, nullable
	AuditedBy    string         `db:"audited_by"`    // VARCHAR(200), free text, not a user FK

	Status       string     `db:"status"`         // VARCHAR(20), NOT NULL (draft/in_progress/completed)
	CompletedAt  *time.Time `db:"completed_at"`   // set once on completion; sort key for "latest"
	NextAuditDue *time.Time `db:"next_audit_due"` // completed_at + IntervalFor(frequency), computed once

	Supersedes string `db:"supersedes"` // UUID, nullable; the completed row this row corrects

	// PDF artifacts, populated asynchronously by the PDF worker. Absence
	// means not rendered yet (or rendering disabled) and is never an error;
	// the pdf_jobs row carries the success/failure state.
	PDFFileID      string     `db:"pdf_file_id"`
	PDFURL         string     `db:"pdf_url"`
	PDFGeneratedAt *time.Time `db:"pdf_generated_at"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const (
	ResponseDraft      = "draft"
	ResponseInProgress = "in_progress"
	ResponseCompleted  = "completed"
)

// Open reports whether the response is still an autosave target.
func (r *AuditResponse) Open() bool {
	return r.Status == ResponseDraft || r.Status == ResponseInProgress
}
