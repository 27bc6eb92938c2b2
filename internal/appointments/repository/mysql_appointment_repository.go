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

const mysqlAppointmentColumns = `id, patient_id, doctor_id, starts_at, ends_at, status,
	created_at, updated_at`

// MySQLAppointmentRepository implements appointment persistence for MySQL.
// UUIDs are stored as CHAR(36) strings.
type MySQLAppointmentRepository struct {
	db *sql.DB
}

// NewMySQLAppointmentRepository creates a new MySQL appointment repository.
func NewMySQLAppointmentRepository(db *sql.DB) *MySQLAppointmentRepository {
	return &MySQLAppointmentRepository{db: db}
}

// Create inserts a new appointment row.
func (m *MySQLAppointmentRepository) Create(
	ctx context.Context,
	appointment *appointmentsDomain.Appointment,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO appointments (id, patient_id, doctor_id, starts_at, ends_at, status,
				created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		appointment.ID.String(),
		appointment.PatientID.String(),
		appointment.DoctorID.String(),
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
func (m *MySQLAppointmentRepository) Update(
	ctx context.Context,
	appointment *appointmentsDomain.Appointment,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE appointments
			  SET starts_at = ?, ends_at = ?, status = ?, updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		appointment.StartsAt,
		appointment.EndsAt,
		appointment.Status,
		appointment.UpdatedAt,
		appointment.ID.String(),
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
func (m *MySQLAppointmentRepository) Get(
	ctx context.Context,
	appointmentID uuid.UUID,
) (*appointmentsDomain.Appointment, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlAppointmentColumns + ` FROM appointments WHERE id = ?`

	appointment, err := scanMySQLAppointment(
		querier.QueryRowContext(ctx, query, appointmentID.String()))
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
func (m *MySQLAppointmentRepository) ListByPatient(
	ctx context.Context,
	patientID uuid.UUID,
	offset, limit int,
) ([]*appointmentsDomain.Appointment, error) {
	query := `SELECT ` + mysqlAppointmentColumns + `
			  FROM appointments
			  WHERE patient_id = ?
			  ORDER BY starts_at DESC
			  LIMIT ? OFFSET ?`

	return m.list(ctx, query, patientID, offset, limit)
}

// ListByDoctor retrieves appointment rows for one doctor ordered by starts_at
// descending with pagination.
func (m *MySQLAppointmentRepository) ListByDoctor(
	ctx context.Context,
	doctorID uuid.UUID,
	offset, limit int,
) ([]*appointmentsDomain.Appointment, error) {
	query := `SELECT ` + mysqlAppointmentColumns + `
			  FROM appointments
			  WHERE doctor_id = ?
			  ORDER BY starts_at DESC
			  LIMIT ? OFFSET ?`

	return m.list(ctx, query, doctorID, offset, limit)
}

func (m *MySQLAppointmentRepository) list(
	ctx context.Context,
	query string,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*appointmentsDomain.Appointment, error) {
	querier := database.GetTx(ctx, m.db)

	rows, err := querier.QueryContext(ctx, query, ownerID.String(), limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list appointments")
	}
	defer rows.Close()

	appointments := []*appointmentsDomain.Appointment{}
	for rows.Next() {
		appointment, err := scanMySQLAppointment(rows)
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
func (m *MySQLAppointmentRepository) Delete(ctx context.Context, appointmentID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx,
		`DELETE FROM appointments WHERE id = ?`, appointmentID.String())
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

func scanMySQLAppointment(row rowScanner) (*appointmentsDomain.Appointment, error) {
	var appointment appointmentsDomain.Appointment
	var idStr, patientIDStr, doctorIDStr, status string

	err := row.Scan(
		&idStr,
		&patientIDStr,
		&doctorIDStr,
		&appointment.StartsAt,
		&appointment.EndsAt,
		&status,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if appointment.ID, err = uuid.Parse(idStr); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse appointment id")
	}
	if appointment.PatientID, err = uuid.Parse(patientIDStr); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse patient id")
	}
	if appointment.DoctorID, err = uuid.Parse(doctorIDStr); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse doctor id")
	}

	appointment.Status = appointmentsDomain.Status(status)

	return &appointment, nil
}
