// Package repository implements persistence for patient consents.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	consentsDomain "github.com/medvault/medvault/internal/consents/domain"
	"github.com/medvault/medvault/internal/database"
	apperrors "github.com/medvault/medvault/internal/errors"
)

const postgresConsentColumns = `id, patient_id, scope, granted_by, granted_at, revoked_at,
	created_at, updated_at`

// PostgreSQLConsentRepository implements consent persistence for PostgreSQL.
type PostgreSQLConsentRepository struct {
	db *sql.DB
}

// NewPostgreSQLConsentRepository creates a new PostgreSQL consent repository.
func NewPostgreSQLConsentRepository(db *sql.DB) *PostgreSQLConsentRepository {
	return &PostgreSQLConsentRepository{db: db}
}

// Create inserts a new consent row.
func (p *PostgreSQLConsentRepository) Create(
	ctx context.Context,
	consent *consentsDomain.Consent,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO consents (id, patient_id, scope, granted_by, granted_at,
				created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		consent.ID,
		consent.PatientID,
		consent.Scope,
		consent.GrantedBy,
		consent.GrantedAt,
		consent.CreatedAt,
		consent.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create consent")
	}
	return nil
}

// Revoke marks an active consent as revoked. Revoking an already revoked
// consent affects no rows and reports a conflict.
func (p *PostgreSQLConsentRepository) Revoke(
	ctx context.Context,
	consentID uuid.UUID,
	revokedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE consents
			  SET revoked_at = $1, updated_at = $1
			  WHERE id = $2 AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, query, revokedAt, consentID)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke consent")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check revoke result")
	}
	if rows == 0 {
		return consentsDomain.ErrConsentAlreadyRevoked
	}
	return nil
}

// Get retrieves a consent row by ID.
func (p *PostgreSQLConsentRepository) Get(
	ctx context.Context,
	consentID uuid.UUID,
) (*consentsDomain.Consent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresConsentColumns + ` FROM consents WHERE id = $1`

	consent, err := scanPostgresConsent(querier.QueryRowContext(ctx, query, consentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, consentsDomain.ErrConsentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get consent")
	}
	return consent, nil
}

// ListByPatient retrieves consent rows for one patient, newest grants first.
func (p *PostgreSQLConsentRepository) ListByPatient(
	ctx context.Context,
	patientID uuid.UUID,
	offset, limit int,
) ([]*consentsDomain.Consent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresConsentColumns + `
			  FROM consents
			  WHERE patient_id = $1
			  ORDER BY granted_at DESC
			  OFFSET $2 LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, patientID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list consents")
	}
	defer rows.Close()

	consents := []*consentsDomain.Consent{}
	for rows.Next() {
		consent, err := scanPostgresConsent(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan consent")
		}
		consents = append(consents, consent)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate consents")
	}

	return consents, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgresConsent(row rowScanner) (*consentsDomain.Consent, error) {
	var consent consentsDomain.Consent
	var revokedAt sql.NullTime

	err := row.Scan(
		&consent.ID,
		&consent.PatientID,
		&consent.Scope,
		&consent.GrantedBy,
		&consent.GrantedAt,
		&revokedAt,
		&consent.CreatedAt,
		&consent.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if revokedAt.Valid {
		consent.RevokedAt = &revokedAt.Time
	}

	return &consent, nil
}
