package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/medvault/medvault/internal/database"
	apperrors "github.com/medvault/medvault/internal/errors"
	recordsDomain "github.com/medvault/medvault/internal/records/domain"
)

const mysqlConsultationColumns = `id, patient_id, doctor_id, consultation_date,
	notes_encrypted, notes,
	created_at, updated_at`

// MySQLConsultationRepository implements StoredConsultation persistence for
// MySQL. UUIDs are stored as CHAR(36) strings; envelopes as BLOB.
type MySQLConsultationRepository struct {
	db *sql.DB
}

// NewMySQLConsultationRepository creates a new MySQL consultation repository.
func NewMySQLConsultationRepository(db *sql.DB) *MySQLConsultationRepository {
	return &MySQLConsultationRepository{db: db}
}

// Create inserts a new consultation row. Only the envelope column is written.
func (m *MySQLConsultationRepository) Create(
	ctx context.Context,
	consultation *recordsDomain.StoredConsultation,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO consultations (id, patient_id, doctor_id, consultation_date,
				notes_encrypted, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		consultation.ID.String(),
		consultation.PatientID.String(),
		consultation.DoctorID.String(),
		consultation.ConsultationDate,
		consultation.NotesEncrypted,
		consultation.CreatedAt,
		consultation.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create consultation")
	}
	return nil
}

// Update replaces the envelope column and clears the legacy plaintext mirror.
func (m *MySQLConsultationRepository) Update(
	ctx context.Context,
	consultation *recordsDomain.StoredConsultation,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE consultations
			  SET consultation_date = ?,
				  notes_encrypted = ?,
				  notes = NULL,
				  updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		consultation.ConsultationDate,
		consultation.NotesEncrypted,
		consultation.UpdatedAt,
		consultation.ID.String(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update consultation")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check update result")
	}
	if rows == 0 {
		return recordsDomain.ErrConsultationNotFound
	}
	return nil
}

// Get retrieves a consultation row by ID.
func (m *MySQLConsultationRepository) Get(
	ctx context.Context,
	consultationID uuid.UUID,
) (*recordsDomain.StoredConsultation, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlConsultationColumns + ` FROM consultations WHERE id = ?`

	consultation, err := scanMySQLConsultation(
		querier.QueryRowContext(ctx, query, consultationID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordsDomain.ErrConsultationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get consultation")
	}
	return consultation, nil
}

// ListByPatient retrieves consultation rows for one patient ordered by
// consultation_date descending with pagination.
func (m *MySQLConsultationRepository) ListByPatient(
	ctx context.Context,
	patientID uuid.UUID,
	offset, limit int,
) ([]*recordsDomain.StoredConsultation, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlConsultationColumns + `
			  FROM consultations
			  WHERE patient_id = ?
			  ORDER BY consultation_date DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, patientID.String(), limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list consultations")
	}
	defer rows.Close()

	consultations := []*recordsDomain.StoredConsultation{}
	for rows.Next() {
		consultation, err := scanMySQLConsultation(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan consultation")
		}
		consultations = append(consultations, consultation)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate consultations")
	}

	return consultations, nil
}

// Delete removes a consultation row.
func (m *MySQLConsultationRepository) Delete(ctx context.Context, consultationID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx,
		`DELETE FROM consultations WHERE id = ?`, consultationID.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to delete consultation")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check delete result")
	}
	if rows == 0 {
		return recordsDomain.ErrConsultationNotFound
	}
	return nil
}

func scanMySQLConsultation(row rowScanner) (*recordsDomain.StoredConsultation, error) {
	var consultation recordsDomain.StoredConsultation
	var idStr, patientIDStr, doctorIDStr string
	var notes sql.NullString

	err := row.Scan(
		&idStr,
		&patientIDStr,
		&doctorIDStr,
		&consultation.ConsultationDate,
		&consultation.NotesEncrypted,
		&notes,
		&consultation.CreatedAt,
		&consultation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if consultation.ID, err = uuid.Parse(idStr); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse consultation id")
	}
	if consultation.PatientID, err = uuid.Parse(patientIDStr); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse patient id")
	}
	if consultation.DoctorID, err = uuid.Parse(doctorIDStr); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse doctor id")
	}

	consultation.NotesLegacy = notes.String

	return &consultation, nil
}
