package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/CareO-HQ/careo-sub007/internal/domain"
)

// PostgresResidentsRepository residents backed by the residents table.
type PostgresResidentsRepository struct {
	db *sql.DB
}

func NewPostgresResidentsRepository(db *sql.DB) *PostgresResidentsRepository {
	return &PostgresResidentsRepository{db: db}
}

var _ ResidentsRepository = (*PostgresResidentsRepository)(nil)

const residentColumns = `
	resident_id::text,
	organization_id::text,
	first_name,
	last_name,
	date_of_birth,
	COALESCE(room_number, '') AS room_number,
	admission_date,
	discharge_date,
	status,
	COALESCE(notes, '') AS notes,
	created_at,
	updated_at
`

func scanResident(scan func(dest ...any) error) (*domain.Resident, error) {
	var resident domain.Resident
	var dateOfBirth, admissionDate, dischargeDate sql.NullTime

	if err := scan(
		&resident.ResidentID,
		&resident.OrganizationID,
		&resident.FirstName,
		&resident.LastName,
		&dateOfBirth,
		&resident.RoomNumber,
		&admissionDate,
		&dischargeDate,
		&resident.Status,
		&resident.Notes,
		&resident.CreatedAt,
		&resident.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if dateOfBirth.Valid {
		resident.DateOfBirth = &dateOfBirth.Time
	}
	if admissionDate.Valid {
		resident.AdmissionDate = &admissionDate.Time
	}
	if dischargeDate.Valid {
		resident.DischargeDate = &dischargeDate.Time
	}

	return &resident, nil
}

func (r *PostgresResidentsRepository) GetResident(ctx context.Context, organizationID, residentID string) (*domain.Resident, error) {
	if organizationID == "" || residentID == "" {
		return nil, fmt.Errorf("organization_id and resident_id are required: %w", ErrNotFound)
	}

	query := `SELECT ` + residentColumns + `
		FROM residents
		WHERE organization_id = $1 AND resident_id = $2`

	row := r.db.QueryRowContext(ctx, query, organizationID, residentID)
	resident, err := scanResident(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("resident not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get resident: %w", err)
	}
	return resident, nil
}

func (r *PostgresResidentsRepository) ListResidents(ctx context.Context, organizationID string, filters ResidentFilters, page, size int) ([]*domain.Resident, int, error) {
	if organizationID == "" {
		return []*domain.Resident{}, 0, nil
	}

	where := []string{"organization_id = $1"}
	args := []any{organizationID}
	argN := 2

	if filters.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argN))
		args = append(args, filters.Status)
		argN++
	}
	if filters.Search != "" {
		where = append(where, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR room_number ILIKE $%d)", argN, argN, argN))
		args = append(args, "%"+filters.Search+"%")
		argN++
	}

	queryCount := `SELECT COUNT(*) FROM residents WHERE ` + strings.Join(where, " AND ")
	var total int
	if err := r.db.QueryRowContext(ctx, queryCount, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count residents: %w", err)
	}

	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	offset := (page - 1) * size

	query := `SELECT ` + residentColumns + `
		FROM residents
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY last_name ASC, first_name ASC
		LIMIT $` + fmt.Sprintf("%d", argN) + ` OFFSET $` + fmt.Sprintf("%d", argN+1)
	args = append(args, size, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list residents: %w", err)
	}
	defer rows.Close()

	var residents []*domain.Resident
	for rows.Next() {
		resident, err := scanResident(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan resident: %w", err)
		}
		residents = append(residents, resident)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate residents: %w", err)
	}

	return residents, total, nil
}

func (r *PostgresResidentsRepository) CreateResident(ctx context.Context, organizationID string, resident *domain.Resident) (string, error) {
	if organizationID == "" {
		return "", fmt.Errorf("organization_id is required")
	}
	if resident.FirstName == "" && resident.LastName == "" {
		return "", fmt.Errorf("resident name is required")
	}
	if resident.Status == "" {
		resident.Status = domain.ResidentActive
	}

	query := `
		INSERT INTO residents (
			organization_id, first_name, last_name, date_of_birth, room_number,
			admission_date, discharge_date, status, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING resident_id::text
	`

	var dateOfBirth, admissionDate, dischargeDate any
	if resident.DateOfBirth != nil {
		dateOfBirth = *resident.DateOfBirth
	}
	if resident.AdmissionDate != nil {
		admissionDate = *resident.AdmissionDate
	}
	if resident.DischargeDate != nil {
		dischargeDate = *resident.DischargeDate
	}

	var residentID string
	err := r.db.QueryRowContext(ctx, query,
		organizationID, resident.FirstName, resident.LastName, dateOfBirth,
		nullIfEmpty(resident.RoomNumber), admissionDate, dischargeDate,
		resident.Status, nullIfEmpty(resident.Notes),
	).Scan(&residentID)
	if err != nil {
		return "", fmt.Errorf("failed to create resident: %w", err)
	}

	return residentID, nil
}

func (r *PostgresResidentsRepository) UpdateResident(ctx context.Context, organizationID, residentID string, resident *domain.Resident) error {
	if organizationID == "" || residentID == "" {
		return fmt.Errorf("organization_id and resident_id are required")
	}

	query := `
		UPDATE residents
		SET first_name = $3,
		    last_name = $4,
		    date_of_birth = $5,
		    room_number = $6,
		    admission_date = $7,
		    discharge_date = $8,
		    status = $9,
		    notes = $10,
		    updated_at = NOW()
		WHERE organization_id = $1 AND resident_id = $2
	`

	var dateOfBirth, admissionDate, dischargeDate any
	if resident.DateOfBirth != nil {
		dateOfBirth = *resident.DateOfBirth
	}
	if resident.AdmissionDate != nil {
		admissionDate = *resident.AdmissionDate
	}
	if resident.DischargeDate != nil {
		dischargeDate = *resident.DischargeDate
	}

	result, err := r.db.ExecContext(ctx, query,
		organizationID, residentID, resident.FirstName, resident.LastName,
		dateOfBirth, nullIfEmpty(resident.RoomNumber), admissionDate, dischargeDate,
		resident.Status, nullIfEmpty(resident.Notes),
	)
	if err != nil {
		return fmt.Errorf("failed to update resident: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("resident not found: %w", ErrNotFound)
	}

	return nil
}

func (r *PostgresResidentsRepository) DeleteResident(ctx context.Context, organizationID, residentID string) error {
	if organizationID == "" || residentID == "" {
		return fmt.Errorf("organization_id and resident_id are required")
	}

	query := `
		DELETE FROM residents
		WHERE organization_id = $1 AND resident_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, organizationID, residentID)
	if err != nil {
		return fmt.Errorf("failed to delete resident: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("resident not found: %w", ErrNotFound)
	}

	return nil
}
