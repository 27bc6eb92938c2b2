// Package domain defines consent models. A consent attaches a scope (what the
// patient allows, e.g. "treatment" or "data_sharing") to a patient profile;
// revocation is recorded in place rather than deleting the row so the history
// survives for the audit trail.
package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/medvault/medvault/internal/errors"
)

// Consent represents one granted (and possibly revoked) patient consent.
type Consent struct {
	ID        uuid.UUID
	PatientID uuid.UUID
	Scope     string
	GrantedBy uuid.UUID
	GrantedAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the consent is currently in force.
func (c *Consent) Active() bool {
	return c.RevokedAt == nil
}

// GrantConsentInput contains the data needed to grant a consent.
type GrantConsentInput struct {
	PatientID uuid.UUID
	Scope     string
	GrantedBy uuid.UUID
}

var (
	// ErrConsentNotFound is returned when a consent is not found.
	ErrConsentNotFound = apperrors.Wrap(apperrors.ErrNotFound, "consent not found")

	// ErrConsentAlreadyRevoked is returned when revoking a consent twice.
	ErrConsentAlreadyRevoked = apperrors.Wrap(apperrors.ErrConflict, "consent already revoked")
)
