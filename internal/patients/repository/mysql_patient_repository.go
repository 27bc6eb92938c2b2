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

const mysqlPatientColumns = `id,
	first_name_encrypted, last_name_encrypted, email_encrypted, phone_encrypted,
	address_encrypted, ssn_encrypted, date_of_birth_encrypted,
	first_name, last_name, email, phone, address, ssn, date_of_birth,
	created_at, updated_at`

// MySQLPatientRepository implements StoredPatient persistence for MySQL.
// UUIDs are stored as CHAR(36) strings; envelopes as BLOB.
type MySQLPatientRepository struct {
	db *sql.DB
}

// NewMySQLPatientRepository creates a new MySQL patient repository.
func NewMySQLPatientRepository(db *sql.DB) *MySQLPatientRepository {
	return &MySQLPatientRepository{db: db}
}

// Create inserts a new patient row. Only the envelope columns are written.
func (m *MySQLPatientRepository) Create(
	ctx context.Context,
	patient *patientsDomain.StoredPatient,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO patients (id,
				first_name_encrypted, last_name_encrypted, email_encrypted, phone_encrypted,
				address_encrypted, ssn_encrypted, date_of_birth_encrypted,
				created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		patient.ID.String(),
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

// Update replaces the envelope columns and clears the legacy plaintext mirrors.
func (m *MySQLPatientRepository) Update(
	ctx context.Context,
	patient *patientsDomain.StoredPatient,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE patients
			  SET first_name_encrypted = ?,
				  last_name_encrypted = ?,
				  email_encrypted = ?,
				  phone_encrypted = ?,
				  address_encrypted = ?,
				  ssn_encrypted = ?,
				  date_of_birth_encrypted = ?,
				  first_name = NULL, last_name = NULL, email = NULL, phone = NULL,
				  address = NULL, ssn = NULL, date_of_birth = NULL,
				  updated_at = ?
			  WHERE id = ?`

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
		patient.ID.String(),
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
func (m *MySQLPatientRepository) Get(
	ctx context.Context,
	patientID uuid.UUID,
) (*patientsDomain.StoredPatient, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlPatientColumns + ` FROM patients WHERE id = ?`

	patient, err := scanMySQLPatient(querier.QueryRowContext(ctx, query, patientID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, patientsDomain.ErrPatientNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get patient")
	}
	return patient, nil
}

// List retrieves patient rows ordered by created_at descending with pagination.
func (m *MySQLPatientRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*patientsDomain.StoredPatient, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlPatientColumns + `
			  FROM patients
			  ORDER BY created_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list patients")
	}
	defer rows.Close()

	patients := []*patientsDomain.StoredPatient{}
	for rows.Next() {
		patient, err := scanMySQLPatient(rows)
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
func (m *MySQLPatientRepository) Delete(ctx context.Context, patientID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM patients WHERE id = ?`, patientID.String())
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

func scanMySQLPatient(row rowScanner) (*patientsDomain.StoredPatient, error) {
	var patient patientsDomain.StoredPatient
	var idStr string
	var firstName, lastName, email, phone, address, ssn, dateOfBirth sql.NullString

	err := row.Scan(
		&idStr,
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

	if patient.ID, err = uuid.Parse(idStr); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse patient id")
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
