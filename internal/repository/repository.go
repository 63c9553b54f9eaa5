package repository

import "errors"

// Sentinel errors shared by all repositories. Postgres and memory
// implementations wrap these with fmt.Errorf("...: %w", ...) so callers can
// errors.Is() them while logs keep the detail.
var (
	// ErrNotFound: the row does not exist within the caller's organization.
	// Every query filters on organization_id, so a cross-organization id
	// reads the same as a missing one and never reveals the row's existence.
	ErrNotFound = errors.New("not found")

	// ErrOrganizationMismatch: a loaded record's organization differs from
	// the one the caller supplied. With scoped queries a cross-organization
	// lookup normally surfaces as ErrNotFound; any lookup path that skips
	// the scoping must return this instead, and the HTTP layer maps it
	// to 403.
	ErrOrganizationMismatch = errors.New("organization mismatch")

	// ErrOpenDraftExists: the partial unique index rejected a second open
	// draft for the same (template, organization). GetOrCreateDraft
	// re-reads on this error.
	ErrOpenDraftExists = errors.New("open draft already exists")
)
