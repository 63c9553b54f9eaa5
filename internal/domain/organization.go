package domain

import "time"

// Organization tenancy boundary (organizations table).
// Every other row carries organization_id and every query filters on it.
type Organization struct {
	OrganizationID string    `db:"organization_id"` // UUID, PRIMARY KEY
	Name           string    `db:"name"`            // VARCHAR(200), NOT NULL
	Domain         string    `db:"domain"`          // VARCHAR(200), NOT NULL, UNIQUE
	Status         string    `db:"status"`          // VARCHAR(20), NOT NULL, DEFAULT 'active' (active/suspended)
	CreatedAt      time.Time `db:"created_at"`
}

const (
	OrganizationActive    = "active"
	OrganizationSuspended = "suspended"
)
