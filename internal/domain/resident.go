package domain

import "time"

// Resident care-home resident record (residents table).
type Resident struct {
	ResidentID     string `db:"resident_id"`     // UUID, PRIMARY KEY
	OrganizationID string `db:"organization_id"` // UUID, NOT NULL

	FirstName   string     `db:"first_name"`    // VARCHAR(100), NOT NULL
	LastName    string     `db:"last_name"`     // VARCHAR(100), NOT NULL
	DateOfBirth *time.Time `db:"date_of_birth"` // DATE, nullable
	RoomNumber  string     `db:"room_number"`   // VARCHAR(50), nullable

	AdmissionDate *time.Time `db:"admission_date"` // DATE, nullable
	DischargeDate *time.Time `db:"discharge_date"` // DATE, nullable (only for discharged/transferred)

	Status string `db:"status"` // VARCHAR(50), NOT NULL, DEFAULT 'active' (active/discharged/transferred)
	Notes  string `db:"notes"`  // TEXT, nullable

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const (
	ResidentActive      = "active"
	ResidentDischarged  = "discharged"
	ResidentTransferred = "transferred"
)

// FullName for PDF filenames and report headers.
func (r *Resident) FullName() string {
	if r.FirstName == "" {
		return r.LastName
	}
	if r.LastName == "" {
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}
