// Package repository implements persistence for medical records and
// consultations.
//
// Sensitive columns hold serialized envelopes (BYTEA/BLOB); the legacy
// plaintext columns are nullable leftovers from pre-encryption rows and are
// never written by this code.
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

const postgresMedicalRecordColumns = `id, patient_id, doctor_id, record_date,
	diagnosis_encrypted, notes_encrypted,
	diagnosis, notes,
	created_at, updated_at`

// PostgreSQLMedicalRecordRepository implements StoredMedicalRecord persistence
// for PostgreSQL.
type PostgreSQLMedicalRecordRepository struct {
	db *sql.DB
}

// NewPostgreSQLMedicalRecordRepository creates a new PostgreSQL medical record
// repository.
func NewPostgreSQLMedicalRecordRepository(db *sql.DB) *PostgreSQLMedicalRecordRepository {
	return &PostgreSQLMedicalRecordRepository{db: db}
}

// Create inserts a new medical record row. Only the envelope columns are
// written.
func (p *PostgreSQLMedicalRecordRepository) Create(
	ctx context.Context,
	record *recordsDomain.StoredMedicalRecord,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO medical_records (id, patient_id, doctor_id, record_date,
				diagnosis_encrypted, notes_encrypted, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.PatientID,
		record.DoctorID,
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

// Update replaces the envelope columns of an existing record row and clears
// the legacy plaintext mirrors.
func (p *PostgreSQLMedicalRecordRepository) Update(
	ctx context.Context,
	record *recordsDomain.StoredMedicalRecord,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE medical_records
			  SET record_date = $1,
				  diagnosis_encrypted = $2,
				  notes_encrypted = $3,
				  diagnosis = NULL, notes = NULL,
				  updated_at = $4
			  WHERE id = $5`

	result, err := querier.ExecContext(
		ctx,
		query,
		record.RecordDate,
		record.DiagnosisEncrypted,
		record.NotesEncrypted,
		record.UpdatedAt,
		record.ID,
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
func (p *PostgreSQLMedicalRecordRepository) Get(
	ctx context.Context,
	recordID uuid.UUID,
) (*recordsDomain.StoredMedicalRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresMedicalRecordColumns + ` FROM medical_records WHERE id = $1`

	record, err := scanPostgresMedicalRecord(querier.QueryRowContext(ctx, query, recordID))
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
func (p *PostgreSQLMedicalRecordRepository) ListByPatient(
	ctx context.Context,
	patientID uuid.UUID,
	offset, limit int,
) ([]*recordsDomain.StoredMedicalRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresMedicalRecordColumns + `
			  FROM medical_records
			  WHERE patient_id = $1
			  ORDER BY record_date DESC
			  OFFSET $2 LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, patientID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list medical records")
	}
	defer rows.Close()

	records := []*recordsDomain.StoredMedicalRecord{}
	for rows.Next() {
		record, err := scanPostgresMedicalRecord(rows)
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
func (p *PostgreSQLMedicalRecordRepository) Delete(ctx context.Context, recordID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM medical_records WHERE id = $1`, recordID)
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

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgresMedicalRecord(row rowScanner) (*recordsDomain.StoredMedicalRecord, error) {
	var record recordsDomain.StoredMedicalRecord
	var diagnosis, notes sql.NullString

	err := row.Scan(
		&record.ID,
		&record.PatientID,
		&record.DoctorID,
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

	record.DiagnosisLegacy = diagnosis.String
	record.NotesLegacy = notes.String

	return &record, nil
}
