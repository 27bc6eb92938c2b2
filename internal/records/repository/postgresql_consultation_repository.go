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

const postgresConsultationColumns = `id, patient_id, doctor_id, consultation_date,
	notes_encrypted, notes,
	created_at, updated_at`

// PostgreSQLConsultationRepository implements StoredConsultation persistence
// for PostgreSQL.
type PostgreSQLConsultationRepository struct {
	db *sql.DB
}

// NewPostgreSQLConsultationRepository creates a new PostgreSQL consultation
// repository.
func NewPostgreSQLConsultationRepository(db *sql.DB) *PostgreSQLConsultationRepository {
	return &PostgreSQLConsultationRepository{db: db}
}

// Create inserts a new consultation row. Only the envelope column is written.
func (p *PostgreSQLConsultationRepository) Create(
	ctx context.Context,
	consultation *recordsDomain.StoredConsultation,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO consultations (id, patient_id, doctor_id, consultation_date,
				notes_encrypted, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		consultation.ID,
		consultation.PatientID,
		consultation.DoctorID,
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

// Update replaces the envelope column of an existing consultation row and
// clears the legacy plaintext mirror.
func (p *PostgreSQLConsultationRepository) Update(
	ctx context.Context,
	consultation *recordsDomain.StoredConsultation,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE consultations
			  SET consultation_date = $1,
				  notes_encrypted = $2,
				  notes = NULL,
				  updated_at = $3
			  WHERE id = $4`

	result, err := querier.ExecContext(
		ctx,
		query,
		consultation.ConsultationDate,
		consultation.NotesEncrypted,
		consultation.UpdatedAt,
		consultation.ID,
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
func (p *PostgreSQLConsultationRepository) Get(
	ctx context.Context,
	consultationID uuid.UUID,
) (*recordsDomain.StoredConsultation, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresConsultationColumns + ` FROM consultations WHERE id = $1`

	consultation, err := scanPostgresConsultation(querier.QueryRowContext(ctx, query, consultationID))
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
func (p *PostgreSQLConsultationRepository) ListByPatient(
	ctx context.Context,
	patientID uuid.UUID,
	offset, limit int,
) ([]*recordsDomain.StoredConsultation, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresConsultationColumns + `
			  FROM consultations
			  WHERE patient_id = $1
			  ORDER BY consultation_date DESC
			  OFFSET $2 LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, patientID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list consultations")
	}
	defer rows.Close()

	consultations := []*recordsDomain.StoredConsultation{}
	for rows.Next() {
		consultation, err := scanPostgresConsultation(rows)
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
func (p *PostgreSQLConsultationRepository) Delete(ctx context.Context, consultationID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM consultations WHERE id = $1`, consultationID)
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

func scanPostgresConsultation(row rowScanner) (*recordsDomain.StoredConsultation, error) {
	var consultation recordsDomain.StoredConsultation
	var notes sql.NullString

	err := row.Scan(
		&consultation.ID,
		&consultation.PatientID,
		&consultation.DoctorID,
		&consultation.ConsultationDate,
		&consultation.NotesEncrypted,
		&notes,
		&consultation.CreatedAt,
		&consultation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	consultation.NotesLegacy = notes.String

	return &consultation, nil
}
