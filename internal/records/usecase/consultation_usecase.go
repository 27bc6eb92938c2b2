package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	piiDomain "github.com/medvault/medvault/internal/pii/domain"
	piiService "github.com/medvault/medvault/internal/pii/service"
	recordsDomain "github.com/medvault/medvault/internal/records/domain"
)

// consultationUseCase implements ConsultationUseCase over the field encryption
// pipeline.
type consultationUseCase struct {
	consultationRepo ConsultationRepository
	protector        piiService.Protector
	decryptor        piiService.Decryptor
}

// Create encrypts the consultation notes and stores the entry.
func (u *consultationUseCase) Create(
	ctx context.Context,
	input *recordsDomain.CreateConsultationInput,
) (*recordsDomain.Consultation, error) {
	now := time.Now().UTC()
	consultation := &recordsDomain.Consultation{
		ID:               uuid.Must(uuid.NewV7()),
		PatientID:        input.PatientID,
		DoctorID:         input.DoctorID,
		ConsultationDate: input.ConsultationDate,
		Notes:            input.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	encrypted, err := u.protector.EncryptEntity(
		piiDomain.EntityConsultation, consultation.PIIFields())
	if err != nil {
		return nil, err
	}

	stored := &recordsDomain.StoredConsultation{
		ID:               consultation.ID,
		PatientID:        consultation.PatientID,
		DoctorID:         consultation.DoctorID,
		ConsultationDate: consultation.ConsultationDate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	stored.SetEncryptedFields(encrypted)

	if err := u.consultationRepo.Create(ctx, stored); err != nil {
		return nil, err
	}

	return consultation, nil
}

// Get retrieves the decrypted view of a consultation.
func (u *consultationUseCase) Get(
	ctx context.Context,
	consultationID uuid.UUID,
) (*recordsDomain.Consultation, error) {
	stored, err := u.consultationRepo.Get(ctx, consultationID)
	if err != nil {
		return nil, err
	}

	fields := stored.FieldValues()
	decrypted := u.decryptor.DecryptEntity(ctx, piiDomain.EntityConsultation, fields)

	return buildConsultationView(stored, fields, decrypted), nil
}

// ListByPatient retrieves decrypted consultation views for one patient.
func (u *consultationUseCase) ListByPatient(
	ctx context.Context,
	patientID uuid.UUID,
	offset, limit int,
) ([]*recordsDomain.Consultation, error) {
	storedRows, err := u.consultationRepo.ListByPatient(ctx, patientID, offset, limit)
	if err != nil {
		return nil, err
	}

	fieldMaps := make([]map[string]piiDomain.FieldValue, len(storedRows))
	for i, stored := range storedRows {
		fieldMaps[i] = stored.FieldValues()
	}

	decrypted := u.decryptor.DecryptEntityBatch(ctx, piiDomain.EntityConsultation, fieldMaps)

	consultations := make([]*recordsDomain.Consultation, len(storedRows))
	for i, stored := range storedRows {
		consultations[i] = buildConsultationView(stored, fieldMaps[i], decrypted[i])
	}
	return consultations, nil
}

// Update replaces the full encrypted consultation entry.
func (u *consultationUseCase) Update(
	ctx context.Context,
	consultationID uuid.UUID,
	input *recordsDomain.UpdateConsultationInput,
) (*recordsDomain.Consultation, error) {
	stored, err := u.consultationRepo.Get(ctx, consultationID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	consultation := &recordsDomain.Consultation{
		ID:               consultationID,
		PatientID:        stored.PatientID,
		DoctorID:         stored.DoctorID,
		ConsultationDate: input.ConsultationDate,
		Notes:            input.Notes,
		CreatedAt:        stored.CreatedAt,
		UpdatedAt:        now,
	}

	encrypted, err := u.protector.EncryptEntity(
		piiDomain.EntityConsultation, consultation.PIIFields())
	if err != nil {
		return nil, err
	}

	updated := &recordsDomain.StoredConsultation{
		ID:               consultationID,
		PatientID:        stored.PatientID,
		DoctorID:         stored.DoctorID,
		ConsultationDate: input.ConsultationDate,
		CreatedAt:        stored.CreatedAt,
		UpdatedAt:        now,
	}
	updated.SetEncryptedFields(encrypted)

	if err := u.consultationRepo.Update(ctx, updated); err != nil {
		return nil, err
	}

	return consultation, nil
}

// Delete removes a consultation entry.
func (u *consultationUseCase) Delete(ctx context.Context, consultationID uuid.UUID) error {
	return u.consultationRepo.Delete(ctx, consultationID)
}

// buildConsultationView assembles the application view from decrypted fields.
func buildConsultationView(
	stored *recordsDomain.StoredConsultation,
	fields map[string]piiDomain.FieldValue,
	decrypted map[string]string,
) *recordsDomain.Consultation {
	notes := ""
	if value, ok := decrypted["notes"]; ok {
		notes = value
	} else if fields["notes"].State() != piiDomain.FieldAbsent {
		notes = piiDomain.MaskedValue
	}

	return &recordsDomain.Consultation{
		ID:               stored.ID,
		PatientID:        stored.PatientID,
		DoctorID:         stored.DoctorID,
		ConsultationDate: stored.ConsultationDate,
		Notes:            notes,
		CreatedAt:        stored.CreatedAt,
		UpdatedAt:        stored.UpdatedAt,
	}
}

// NewConsultationUseCase creates a new ConsultationUseCase with the provided
// dependencies.
func NewConsultationUseCase(
	consultationRepo ConsultationRepository,
	protector piiService.Protector,
	decryptor piiService.Decryptor,
) ConsultationUseCase {
	return &consultationUseCase{
		consultationRepo: consultationRepo,
		protector:        protector,
		decryptor:        decryptor,
	}
}
