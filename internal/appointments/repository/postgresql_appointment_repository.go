// Package repository implements persistence for appointments.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	appointmentsDomain "github.com/medvault/medvault/internal/appointments/domain"
	"github.com/medvault/medvault/internal/database"
	apperrors "github.com/medvault/medvault/internal/errors"
)

const postgresAppointmentColumns = `id, patient_id, doctor_id, starts_at, ends_at, status,
	created_at, updated_at`

// PostgreSQLAppointmentRepository implements appointment persistence for
// PostgreSQL.
type PostgreSQLAppointmentRepository struct {
	db *sql.DB
}

// NewPostgreSQLAppointmentRepository creates a new PostgreSQL appointment
// repository.
func NewPostgreSQLAppointmentRepository(db *sql.DB) *PostgreSQLAppointmentRepository {
	return &PostgreSQLAppointmentRepository{db: db}
}

// Create inserts a new appointment row.
func (p *PostgreSQLAppointmentRepository) Create(
	ctx context.Context,
	appointment *appointmentsDomain.Appointment,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO appointments (id, patient_id, doctor_id, starts_at, ends_at, status,
				created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		appointment.ID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.StartsAt,
		appointment.EndsAt,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create appointment")
	}
	return nil
}

// Update replaces the mutable columns of an appointment row.
func (p *PostgreSQLAppointmentRepository) Update(
	ctx context.Context,
	appointment *appointmentsDomain.Appointment,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE appointments
			  SET starts_at = $1, ends_at = $2, status = $3, updated_at = $4
			  WHERE id = $5`

	result, err := querier.ExecContext(
		ctx,
		query,
		appointment.StartsAt,
		appointment.EndsAt,
		appointment.Status,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update appointment")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check update result")
	}
	if rows == 0 {
		return appointmentsDomain.ErrAppointmentNotFound
	}
	return nil
}

// Get retrieves an appointment row by ID.
func (p *PostgreSQLAppointmentRepository) Get(
	ctx context.Context,
	appointmentID uuid.UUID,
) (*appointmentsDomain.Appointment, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresAppointmentColumns + ` FROM appointments WHERE id = $1`

	appointment, err := scanPostgresAppointment(querier.QueryRowContext(ctx, query, appointmentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appointmentsDomain.ErrAppointmentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get appointment")
	}
	return appointment, nil
}

// ListByPatient retrieves appointment rows for one patient ordered by
// starts_at descending with pagination.
func (p *PostgreSQLAppointmentRepository) ListByPatient(
	ctx context.Context,
	patientID uuid.UUID,
	offset, limit int,
) ([]*appointmentsDomain.Appointment, error) {
	query := `SELECT ` + postgresAppointmentColumns + `
			  FROM appointments
			  WHERE patient_id = $1
			  ORDER BY starts_at DESC
			  OFFSET $2 LIMIT $3`

	return p.list(ctx, query, patientID, offset, limit)
}

// ListByDoctor retrieves appointment rows for one doctor ordered by starts_at
// descending with pagination.
func (p *PostgreSQLAppointmentRepository) ListByDoctor(
	ctx context.Context,
	doctorID uuid.UUID,
	offset, limit int,
) ([]*appointmentsDomain.Appointment, error) {
	query := `SELECT ` + postgresAppointmentColumns + `
			  FROM appointments
			  WHERE doctor_id = $1
			  ORDER BY starts_at DESC
			  OFFSET $2 LIMIT $3`

	return p.list(ctx, query, doctorID, offset, limit)
}

func (p *PostgreSQLAppointmentRepository) list(
	ctx context.Context,
	query string,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*appointmentsDomain.Appointment, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx, query, ownerID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list appointments")
	}
	defer rows.Close()

	appointments := []*appointmentsDomain.Appointment{}
	for rows.Next() {
		appointment, err := scanPostgresAppointment(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan appointment")
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate appointments")
	}

	return appointments, nil
}

// Delete removes an appointment row.
func (p *PostgreSQLAppointmentRepository) Delete(ctx context.Context, appointmentID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx,
		`DELETE FROM appointments WHERE id = $1`, appointmentID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete appointment")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check delete result")
	}
	if rows == 0 {
		return appointmentsDomain.ErrAppointmentNotFound
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgresAppointment(row rowScanner) (*appointmentsDomain.Appointment, error) {
	var appointment appointmentsDomain.Appointment
	var status string

	err := row.Scan(
		&appointment.ID,
		&appointment.PatientID,
		&appointment.DoctorID,
		&appointment.StartsAt,
		&appointment.EndsAt,
		&status,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	appointment.Status = appointmentsDomain.Status(status)

	return &appointment, nil
}
