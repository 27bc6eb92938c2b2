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

const mysqlConsentColumns = `id, patient_id, scope, granted_by, granted_at, revoked_at,
	created_at, updated_at`

// MySQLConsentRepository implements consent persistence for MySQL. UUIDs are
// stored as CHAR(36) strings.
type MySQLConsentRepository struct {
	db *sql.DB
}

// NewMySQLConsentRepository creates a new MySQL consent repository.
func NewMySQLConsentRepository(db *sql.DB) *MySQLConsentRepository {
	return &MySQLConsentRepository{db: db}
}

// Create inserts a new consent row.
func (m *MySQLConsentRepository) Create(
	ctx context.Context,
	consent *consentsDomain.Consent,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO consents (id, patient_id, scope, granted_by, granted_at,
				created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		consent.ID.String(),
		consent.PatientID.String(),
		consent.Scope,
		consent.GrantedBy.String(),
		consent.GrantedAt,
		consent.CreatedAt,
		consent.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create consent")
	}
	return nil
}

// Revoke marks an active consent as revoked.
func (m *MySQLConsentRepository) Revoke(
	ctx context.Context,
	consentID uuid.UUID,
	revokedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE consents
			  SET revoked_at = ?, updated_at = ?
			  WHERE id = ? AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, query, revokedAt, revokedAt, consentID.String())
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
func (m *MySQLConsentRepository) Get(
	ctx context.Context,
	consentID uuid.UUID,
) (*consentsDomain.Consent, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlConsentColumns + ` FROM consents WHERE id = ?`

	consent, err := scanMySQLConsent(querier.QueryRowContext(ctx, query, consentID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, consentsDomain.ErrConsentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get consent")
	}
	return consent, nil
}

// ListByPatient retrieves consent rows for one patient, newest grants first.
func (m *MySQLConsentRepository) ListByPatient(
	ctx context.Context,
	patientID uuid.UUID,
	offset, limit int,
) ([]*consentsDomain.Consent, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlConsentColumns + `
			  FROM consents
			  WHERE patient_id = ?
			  ORDER BY granted_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, patientID.String(), limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list consents")
	}
	defer rows.Close()

	consents := []*consentsDomain.Consent{}
	for rows.Next() {
		consent, err := scanMySQLConsent(rows)
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

func scanMySQLConsent(row rowScanner) (*consentsDomain.Consent, error) {
	var consent consentsDomain.Consent
	var idStr, patientIDStr, grantedByStr string
	var revokedAt sql.NullTime

	err := row.Scan(
		&idStr,
		&patientIDStr,
		&consent.Scope,
		&grantedByStr,
		&consent.GrantedAt,
		&revokedAt,
		&consent.CreatedAt,
		&consent.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if consent.ID, err = uuid.Parse(idStr); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse consent id")
	}
	if consent.PatientID, err = uuid.Parse(patientIDStr); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse patient id")
	}
	if consent.GrantedBy, err = uuid.Parse(grantedByStr); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse granted_by id")
	}

	if revokedAt.Valid {
		consent.RevokedAt = &revokedAt.Time
	}

	return &consent, nil
}
