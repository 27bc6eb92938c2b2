// Package usecase implements business logic orchestration for patient profiles.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/medvault/medvault/internal/errors"
	patientsDomain "github.com/medvault/medvault/internal/patients/domain"
	"github.com/medvault/medvault/internal/pii/clientside"
	piiDomain "github.com/medvault/medvault/internal/pii/domain"
	piiService "github.com/medvault/medvault/internal/pii/service"
)

// patientUseCase implements PatientUseCase over the field encryption pipeline.
type patientUseCase struct {
	patientRepo   PatientRepository
	protector     piiService.Protector
	decryptor     piiService.Decryptor
	payloadCipher *clientside.PayloadCipher
}

// Create encrypts every populated PII field and stores the patient. A single
// encryption failure aborts the whole write; a half-encrypted profile is
// never persisted.
func (u *patientUseCase) Create(
	ctx context.Context,
	input *patientsDomain.CreatePatientInput,
) (*patientsDomain.Patient, error) {
	now := time.Now().UTC()
	patient := &patientsDomain.Patient{
		ID:          uuid.Must(uuid.NewV7()),
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		Phone:       input.Phone,
		Address:     input.Address,
		SSN:         input.SSN,
		DateOfBirth: input.DateOfBirth,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	encrypted, err := u.protector.EncryptEntity(piiDomain.EntityPatient, patient.PIIFields())
	if err != nil {
		return nil, err
	}

	stored := &patientsDomain.StoredPatient{
		ID:        patient.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	stored.SetEncryptedFields(encrypted)

	if err := u.patientRepo.Create(ctx, stored); err != nil {
		return nil, err
	}

	return patient, nil
}

// Get retrieves the decrypted view of a patient. Decryption degrades per
// field: a corrupted envelope yields the masked placeholder for that field
// while the rest of the profile stays readable.
func (u *patientUseCase) Get(
	ctx context.Context,
	patientID uuid.UUID,
) (*patientsDomain.Patient, error) {
	stored, err := u.patientRepo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	fields := stored.FieldValues()
	decrypted := u.decryptor.DecryptEntity(ctx, piiDomain.EntityPatient, fields)

	return buildPatientView(stored, fields, decrypted), nil
}

// List retrieves decrypted patient views. Entities are decrypted in parallel;
// results are zipped back against the stored rows by position.
func (u *patientUseCase) List(
	ctx context.Context,
	offset, limit int,
) ([]*patientsDomain.Patient, error) {
	storedRows, err := u.patientRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	fieldMaps := make([]map[string]piiDomain.FieldValue, len(storedRows))
	for i, stored := range storedRows {
		fieldMaps[i] = stored.FieldValues()
	}

	decrypted := u.decryptor.DecryptEntityBatch(ctx, piiDomain.EntityPatient, fieldMaps)

	patients := make([]*patientsDomain.Patient, len(storedRows))
	for i, stored := range storedRows {
		patients[i] = buildPatientView(stored, fieldMaps[i], decrypted[i])
	}
	return patients, nil
}

// Update replaces the full encrypted profile. The repository clears the
// legacy plaintext mirrors on the way through, so an updated row carries
// envelopes only.
func (u *patientUseCase) Update(
	ctx context.Context,
	patientID uuid.UUID,
	input *patientsDomain.UpdatePatientInput,
) (*patientsDomain.Patient, error) {
	stored, err := u.patientRepo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	patient := &patientsDomain.Patient{
		ID:          patientID,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		Phone:       input.Phone,
		Address:     input.Address,
		SSN:         input.SSN,
		DateOfBirth: input.DateOfBirth,
		CreatedAt:   stored.CreatedAt,
		UpdatedAt:   now,
	}

	encrypted, err := u.protector.EncryptEntity(piiDomain.EntityPatient, patient.PIIFields())
	if err != nil {
		return nil, err
	}

	updated := &patientsDomain.StoredPatient{
		ID:        patientID,
		CreatedAt: stored.CreatedAt,
		UpdatedAt: now,
	}
	updated.SetEncryptedFields(encrypted)

	if err := u.patientRepo.Update(ctx, updated); err != nil {
		return nil, err
	}

	return patient, nil
}

// UpdateFromEncryptedPayload verifies and decrypts a client-encrypted update
// envelope, then applies it through the normal update path. Without a
// configured boundary cipher the operation fails closed.
func (u *patientUseCase) UpdateFromEncryptedPayload(
	ctx context.Context,
	patientID uuid.UUID,
	envelope *piiDomain.Envelope,
) (*patientsDomain.Patient, error) {
	if u.payloadCipher == nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "client payload encryption is not configured")
	}

	var input patientsDomain.UpdatePatientInput
	if err := u.payloadCipher.DecryptPayload(envelope, &input); err != nil {
		return nil, err
	}

	return u.Update(ctx, patientID, &input)
}

// Delete removes a patient profile.
func (u *patientUseCase) Delete(ctx context.Context, patientID uuid.UUID) error {
	return u.patientRepo.Delete(ctx, patientID)
}

// buildPatientView assembles the application view from decrypted fields.
// A field that was stored but did not decrypt gets the masked placeholder;
// absent fields stay empty.
func buildPatientView(
	stored *patientsDomain.StoredPatient,
	fields map[string]piiDomain.FieldValue,
	decrypted map[string]string,
) *patientsDomain.Patient {
	read := func(name string) string {
		if value, ok := decrypted[name]; ok {
			return value
		}
		if fields[name].State() != piiDomain.FieldAbsent {
			return piiDomain.MaskedValue
		}
		return ""
	}

	return &patientsDomain.Patient{
		ID:          stored.ID,
		FirstName:   read("first_name"),
		LastName:    read("last_name"),
		Email:       read("email"),
		Phone:       read("phone"),
		Address:     read("address"),
		SSN:         read("ssn"),
		DateOfBirth: read("date_of_birth"),
		CreatedAt:   stored.CreatedAt,
		UpdatedAt:   stored.UpdatedAt,
	}
}

// NewPatientUseCase creates a new PatientUseCase with the provided
// dependencies. The payload cipher may be nil when client payload encryption
// is not configured; the encrypted-payload path then fails closed.
func NewPatientUseCase(
	patientRepo PatientRepository,
	protector piiService.Protector,
	decryptor piiService.Decryptor,
	payloadCipher *clientside.PayloadCipher,
) PatientUseCase {
	return &patientUseCase{
		patientRepo:   patientRepo,
		protector:     protector,
		decryptor:     decryptor,
		payloadCipher: payloadCipher,
	}
}
