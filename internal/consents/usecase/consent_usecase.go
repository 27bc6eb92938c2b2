package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/medvault/medvault/internal/audit/domain"
	auditUseCase "github.com/medvault/medvault/internal/audit/usecase"
	consentsDomain "github.com/medvault/medvault/internal/consents/domain"
)

// consentUseCase implements ConsentUseCase. Consent changes are compliance
// relevant, so every grant and revocation is recorded in the audit trail;
// the audit write is fire-and-forget and never fails the consent operation.
type consentUseCase struct {
	consentRepo ConsentRepository
	auditEvents auditUseCase.EventUseCase
	logger      *slog.Logger
}

// Grant stores a new active consent and records the change.
func (u *consentUseCase) Grant(
	ctx context.Context,
	input *consentsDomain.GrantConsentInput,
) (*consentsDomain.Consent, error) {
	now := time.Now().UTC()
	consent := &consentsDomain.Consent{
		ID:        uuid.Must(uuid.NewV7()),
		PatientID: input.PatientID,
		Scope:     input.Scope,
		GrantedBy: input.GrantedBy,
		GrantedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := u.consentRepo.Create(ctx, consent); err != nil {
		return nil, err
	}

	u.recordChange(ctx, input.GrantedBy, consent, "grant")

	return consent, nil
}

// Revoke marks a consent as revoked and records the change. Revoking an
// already revoked consent fails with a conflict.
func (u *consentUseCase) Revoke(
	ctx context.Context,
	consentID uuid.UUID,
	revokedBy uuid.UUID,
) (*consentsDomain.Consent, error) {
	consent, err := u.consentRepo.Get(ctx, consentID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := u.consentRepo.Revoke(ctx, consentID, now); err != nil {
		return nil, err
	}

	consent.RevokedAt = &now
	consent.UpdatedAt = now

	u.recordChange(ctx, revokedBy, consent, "revoke")

	return consent, nil
}

// Get retrieves one consent.
func (u *consentUseCase) Get(
	ctx context.Context,
	consentID uuid.UUID,
) (*consentsDomain.Consent, error) {
	return u.consentRepo.Get(ctx, consentID)
}

// ListByPatient retrieves consents for one patient, newest grants first.
func (u *consentUseCase) ListByPatient(
	ctx context.Context,
	patientID uuid.UUID,
	offset, limit int,
) ([]*consentsDomain.Consent, error) {
	return u.consentRepo.ListByPatient(ctx, patientID, offset, limit)
}

func (u *consentUseCase) recordChange(
	ctx context.Context,
	actorID uuid.UUID,
	consent *consentsDomain.Consent,
	operation string,
) {
	err := u.auditEvents.Record(ctx, actorID, auditDomain.ActionConsentChange,
		"consent", consent.Scope, true, map[string]any{
			"consent_id": consent.ID.String(),
			"patient_id": consent.PatientID.String(),
			"operation":  operation,
		})
	if err != nil {
		u.logger.Error("failed to record consent change",
			slog.String("consent_id", consent.ID.String()),
			slog.Any("error", err))
	}
}

// NewConsentUseCase creates a new ConsentUseCase with the provided
// dependencies. A nil logger falls back to slog.Default().
func NewConsentUseCase(
	consentRepo ConsentRepository,
	auditEvents auditUseCase.EventUseCase,
	logger *slog.Logger,
) ConsentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &consentUseCase{
		consentRepo: consentRepo,
		auditEvents: auditEvents,
		logger:      logger,
	}
}
