// Package repository implements persistence for patient profiles.
//
// PII columns hold serialized envelopes (BYTEA/BLOB); the legacy plaintext
// columns are nullable leftovers from pre-encryption rows and are never
// written by this code.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/medvault/medvault/internal/database"
	apperrors "github.com/medvault/medvault/internal/errors"
	patientsDomain "github.com/medvault/medvault/internal/patients/domain"
)

const postgresPatientColumns = `id,
	first_name_encrypted, last_name_encrypted, email_encrypted, phone_encrypted,
	address_encrypted, ssn_encrypted, date_of_birth_encrypted,
	first_name, last_name, email, phone, address, ssn, date_of_birth,
	created_at, updated_at`

// PostgreSQLPatientRepository implements StoredPatient persistence for PostgreSQL.
type PostgreSQLPatientRepository struct {
	db *sql.DB
}

// NewPostgreSQLPatientRepository creates a new PostgreSQL patient repository.
func NewPostgreSQLPatientRepository(db *sql.DB) *PostgreSQLPatientRepository {
	return &PostgreSQLPatientRepository{db: db}
}

// Create inserts a new patient row. Only the envelope columns are written;
// the legacy plaintext columns stay NULL for rows created after encryption.
func (p *PostgreSQLPatientRepository) Create(
	ctx context.Context,
	patient *patientsDomain.StoredPatient,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO patients (id,
				first_name_encrypted, last_name_encrypted, email_encrypted, phone_encrypted,
				address_encrypted, ssn_encrypted, date_of_birth_encrypted,
				created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		patient.ID,
		patient.FirstNameEncrypted,
		patient.LastNameEncrypted,
		patient.EmailEncrypted,
		patient.PhoneEncrypted,
		patient.AddressEncrypted,
		patient.SSNEncrypted,
		patient.DateOfBirthEncrypted,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create patient")
	}
	return nil
}

// Update replaces the envelope columns of an existing patient row and clears
// the legacy plaintext mirrors: a re-encrypted row no longer needs fallbacks.
func (p *PostgreSQLPatientRepository) Update(
	ctx context.Context,
	patient *patientsDomain.StoredPatient,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE patients
			  SET first_name_encrypted = $1,
				  last_name_encrypted = $2,
				  email_encrypted = $3,
				  phone_encrypted = $4,
				  address_encrypted = $5,
				  ssn_encrypted = $6,
				  date_of_birth_encrypted = $7,
				  first_name = NULL, last_name = NULL, email = NULL, phone = NULL,
				  address = NULL, ssn = NULL, date_of_birth = NULL,
				  updated_at = $8
			  WHERE id = $9`

	result, err := querier.ExecContext(
		ctx,
		query,
		patient.FirstNameEncrypted,
		patient.LastNameEncrypted,
		patient.EmailEncrypted,
		patient.PhoneEncrypted,
		patient.AddressEncrypted,
		patient.SSNEncrypted,
		patient.DateOfBirthEncrypted,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update patient")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check update result")
	}
	if rows == 0 {
		return patientsDomain.ErrPatientNotFound
	}
	return nil
}

// Get retrieves a patient row by ID. Returns ErrPatientNotFound if the row
// doesn't exist.
func (p *PostgreSQLPatientRepository) Get(
	ctx context.Context,
	patientID uuid.UUID,
) (*patientsDomain.StoredPatient, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresPatientColumns + ` FROM patients WHERE id = $1`

	patient, err := scanPostgresPatient(querier.QueryRowContext(ctx, query, patientID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, patientsDomain.ErrPatientNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get patient")
	}
	return patient, nil
}

// List retrieves patient rows ordered by created_at descending with pagination.
func (p *PostgreSQLPatientRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*patientsDomain.StoredPatient, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresPatientColumns + `
			  FROM patients
			  ORDER BY created_at DESC
			  OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list patients")
	}
	defer rows.Close()

	patients := []*patientsDomain.StoredPatient{}
	for rows.Next() {
		patient, err := scanPostgresPatient(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan patient")
		}
		patients = append(patients, patient)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate patients")
	}

	return patients, nil
}

// Delete removes a patient row. Returns ErrPatientNotFound if the row doesn't exist.
func (p *PostgreSQLPatientRepository) Delete(ctx context.Context, patientID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, patientID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete patient")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check delete result")
	}
	if rows == 0 {
		return patientsDomain.ErrPatientNotFound
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgresPatient(row rowScanner) (*patientsDomain.StoredPatient, error) {
	var patient patientsDomain.StoredPatient
	var firstName, lastName, email, phone, address, ssn, dateOfBirth sql.NullString

	err := row.Scan(
		&patient.ID,
		&patient.FirstNameEncrypted,
		&patient.LastNameEncrypted,
		&patient.EmailEncrypted,
		&patient.PhoneEncrypted,
		&patient.AddressEncrypted,
		&patient.SSNEncrypted,
		&patient.DateOfBirthEncrypted,
		&firstName,
		&lastName,
		&email,
		&phone,
		&address,
		&ssn,
		&dateOfBirth,
		&patient.CreatedAt,
		&patient.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	patient.FirstNameLegacy = firstName.String
	patient.LastNameLegacy = lastName.String
	patient.EmailLegacy = email.String
	patient.PhoneLegacy = phone.String
	patient.AddressLegacy = address.String
	patient.SSNLegacy = ssn.String
	patient.DateOfBirthLegacy = dateOfBirth.String

	return &patient, nil
}
