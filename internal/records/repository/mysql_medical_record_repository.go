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

const mysqlMedicalRecordColumns = `id, patient_id, doctor_id, record_date,
	diagnosis_encrypted, notes_encrypted,
	diagnosis, notes,
	created_at, updated_at`

// MySQLMedicalRecordRepository implements StoredMedicalRecord persistence for
// MySQL. UUIDs are stored as CHAR(36) strings; envelopes as BLOB.
type MySQLMedicalRecordRepository struct {
	db *sql.DB
}

// NewMySQLMedicalRecordRepository creates a new MySQL medical record repository.
func NewMySQLMedicalRecordRepository(db *sql.DB) *MySQLMedicalRecordRepository {
	return &MySQLMedicalRecordRepository{db: db}
}

// Create inserts a new medical record row. Only the envelope columns are written.
func (m *MySQLMedicalRecordRepository) Create(
	ctx context.Context,
	record *recordsDomain.StoredMedicalRecord,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO medical_records (id, patient_id, doctor_id, record_date,
				diagnosis_encrypted, notes_encrypted, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID.String(),
		record.PatientID.String(),
		record.DoctorID.String(),
		record.RecordDate,
		record.DiagnosisEncrypted,
		record.NotesEncrypted,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create medical record")
	}
	return nil
}

// Update replaces the envelope columns and clears the legacy plaintext mirrors.
func (m *MySQLMedicalRecordRepository) Update(
	ctx context.Context,
	record *recordsDomain.StoredMedicalRecord,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE medical_records
			  SET record_date = ?,
				  diagnosis_encrypted = ?,
				  notes_encrypted = ?,
				  diagnosis = NULL, notes = NULL,
				  updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		record.RecordDate,
		record.DiagnosisEncrypted,
		record.NotesEncrypted,
		record.UpdatedAt,
		record.ID.String(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update medical record")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check update result")
	}
	if rows == 0 {
		return recordsDomain.ErrMedicalRecordNotFound
	}
	return nil
}

// Get retrieves a medical record row by ID.
func (m *MySQLMedicalRecordRepository) Get(
	ctx context.Context,
	recordID uuid.UUID,
) (*recordsDomain.StoredMedicalRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlMedicalRecordColumns + ` FROM medical_records WHERE id = ?`

	record, err := scanMySQLMedicalRecord(querier.QueryRowContext(ctx, query, recordID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordsDomain.ErrMedicalRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get medical record")
	}
	return record, nil
}

// ListByPatient retrieves record rows for one patient ordered by record_date
// descending with pagination.
func (m *MySQLMedicalRecordRepository) ListByPatient(
	ctx context.Context,
	patientID uuid.UUID,
	offset, limit int,
) ([]*recordsDomain.StoredMedicalRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlMedicalRecordColumns + `
			  FROM medical_records
			  WHERE patient_id = ?
			  ORDER BY record_date DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, patientID.String(), limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list medical records")
	}
	defer rows.Close()

	records := []*recordsDomain.StoredMedicalRecord{}
	for rows.Next() {
		record, err := scanMySQLMedicalRecord(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan medical record")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate medical records")
	}

	return records, nil
}

// Delete removes a medical record row.
func (m *MySQLMedicalRecordRepository) Delete(ctx context.Context, recordID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx,
		`DELETE FROM medical_records WHERE id = ?`, recordID.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to delete medical record")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check delete result")
	}
	if rows == 0 {
		return recordsDomain.ErrMedicalRecordNotFound
	}
	return nil
}

func scanMySQLMedicalRecord(row rowScanner) (*recordsDomain.StoredMedicalRecord, error) {
	var record recordsDomain.StoredMedicalRecord
	var idStr, patientIDStr, doctorIDStr string
	var diagnosis, notes sql.NullString

	err := row.Scan(
		&idStr,
		&patientIDStr,
		&doctorIDStr,
		&record.RecordDate,
		&record.DiagnosisEncrypted,
		&record.NotesEncrypted,
		&diagnosis,
		&notes,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if record.ID, err = uuid.Parse(idStr); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse medical record id")
	}
	if record.PatientID, err = uuid.Parse(patientIDStr); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse patient id")
	}
	if record.DoctorID, err = uuid.Parse(doctorIDStr); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse doctor id")
	}

	record.DiagnosisLegacy = diagnosis.String
	record.NotesLegacy = notes.String

	return &record, nil
}
