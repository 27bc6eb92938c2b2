// Package usecase defines business logic interfaces for patient profiles.
package usecase

import (
	"context"

	"github.com/google/uuid"

	patientsDomain "github.com/medvault/medvault/internal/patients/domain"
	piiDomain "github.com/medvault/medvault/internal/pii/domain"
)

// PatientRepository defines persistence operations for stored patient rows.
// Implementations must support transaction-aware operations via context propagation.
type PatientRepository interface {
	// Create stores a new patient row.
	Create(ctx context.Context, patient *patientsDomain.StoredPatient) error

	// Update replaces the envelope columns of an existing row and clears the
	// legacy plaintext mirrors. Returns ErrPatientNotFound if not found.
	Update(ctx context.Context, patient *patientsDomain.StoredPatient) error

	// Get retrieves a patient row by ID. Returns ErrPatientNotFound if not found.
	Get(ctx context.Context, patientID uuid.UUID) (*patientsDomain.StoredPatient, error)

	// List retrieves patient rows ordered by created_at descending with pagination.
	List(ctx context.Context, offset, limit int) ([]*patientsDomain.StoredPatient, error)

	// Delete removes a patient row. Returns ErrPatientNotFound if not found.
	Delete(ctx context.Context, patientID uuid.UUID) error
}

// PatientUseCase defines business logic operations for patient profiles.
type PatientUseCase interface {
	// Create encrypts the profile's PII fields and stores the patient.
	// All-or-nothing: any field encryption failure aborts the write.
	Create(ctx context.Context, input *patientsDomain.CreatePatientInput) (*patientsDomain.Patient, error)

	// Get retrieves the decrypted view of a patient. Fields that fail to
	// decrypt carry the masked placeholder; the read never fails because of a
	// corrupted field.
	Get(ctx context.Context, patientID uuid.UUID) (*patientsDomain.Patient, error)

	// List retrieves decrypted patient views, decrypted in parallel. The
	// output order matches the stored order regardless of completion order.
	List(ctx context.Context, offset, limit int) ([]*patientsDomain.Patient, error)

	// Update replaces the full encrypted profile.
	Update(
		ctx context.Context,
		patientID uuid.UUID,
		input *patientsDomain.UpdatePatientInput,
	) (*patientsDomain.Patient, error)

	// UpdateFromEncryptedPayload decrypts a client-encrypted profile update
	// envelope at the boundary and applies it like Update.
	UpdateFromEncryptedPayload(
		ctx context.Context,
		patientID uuid.UUID,
		envelope *piiDomain.Envelope,
	) (*patientsDomain.Patient, error)

	// Delete removes a patient profile.
	Delete(ctx context.Context, patientID uuid.UUID) error
}
