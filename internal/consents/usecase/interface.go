// Package usecase implements business logic orchestration for patient consents.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	consentsDomain "github.com/medvault/medvault/internal/consents/domain"
)

// ConsentRepository defines persistence operations for consents.
type ConsentRepository interface {
	Create(ctx context.Context, consent *consentsDomain.Consent) error
	Revoke(ctx context.Context, consentID uuid.UUID, revokedAt time.Time) error
	Get(ctx context.Context, consentID uuid.UUID) (*consentsDomain.Consent, error)
	ListByPatient(
		ctx context.Context,
		patientID uuid.UUID,
		offset, limit int,
	) ([]*consentsDomain.Consent, error)
}

// ConsentUseCase defines business operations for consents. Every grant and
// revocation leaves an audit trail entry.
type ConsentUseCase interface {
	Grant(ctx context.Context, input *consentsDomain.GrantConsentInput) (*consentsDomain.Consent, error)
	Revoke(ctx context.Context, consentID uuid.UUID, revokedBy uuid.UUID) (*consentsDomain.Consent, error)
	Get(ctx context.Context, consentID uuid.UUID) (*consentsDomain.Consent, error)
	ListByPatient(
		ctx context.Context,
		patientID uuid.UUID,
		offset, limit int,
	) ([]*consentsDomain.Consent, error)
}
