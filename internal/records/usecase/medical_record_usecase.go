package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	piiDomain "github.com/medvault/medvault/internal/pii/domain"
	piiService "github.com/medvault/medvault/internal/pii/service"
	recordsDomain "github.com/medvault/medvault/internal/records/domain"
)

// medicalRecordUseCase implements MedicalRecordUseCase over the field
// encryption pipeline.
type medicalRecordUseCase struct {
	recordRepo MedicalRecordRepository
	protector  piiService.Protector
	decryptor  piiService.Decryptor
}

// Create encrypts the clinical narrative fields and stores the record. A
// single encryption failure aborts the whole write.
func (u *medicalRecordUseCase) Create(
	ctx context.Context,
	input *recordsDomain.CreateMedicalRecordInput,
) (*recordsDomain.MedicalRecord, error) {
	now := time.Now().UTC()
	record := &recordsDomain.MedicalRecord{
		ID:         uuid.Must(uuid.NewV7()),
		PatientID:  input.PatientID,
		DoctorID:   input.DoctorID,
		RecordDate: input.RecordDate,
		Diagnosis:  input.Diagnosis,
		Notes:      input.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	encrypted, err := u.protector.EncryptEntity(piiDomain.EntityMedicalRecord, record.PIIFields())
	if err != nil {
		return nil, err
	}

	stored := &recordsDomain.StoredMedicalRecord{
		ID:         record.ID,
		PatientID:  record.PatientID,
		DoctorID:   record.DoctorID,
		RecordDate: record.RecordDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	stored.SetEncryptedFields(encrypted)

	if err := u.recordRepo.Create(ctx, stored); err != nil {
		return nil, err
	}

	return record, nil
}

// Get retrieves the decrypted view of a medical record. Decryption degrades
// per field: a corrupted envelope yields the masked placeholder for that field.
func (u *medicalRecordUseCase) Get(
	ctx context.Context,
	recordID uuid.UUID,
) (*recordsDomain.MedicalRecord, error) {
	stored, err := u.recordRepo.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}

	fields := stored.FieldValues()
	decrypted := u.decryptor.DecryptEntity(ctx, piiDomain.EntityMedicalRecord, fields)

	return buildMedicalRecordView(stored, fields, decrypted), nil
}

// ListByPatient retrieves decrypted record views for one patient. Entities are
// decrypted in parallel; results are zipped back by position.
func (u *medicalRecordUseCase) ListByPatient(
	ctx context.Context,
	patientID uuid.UUID,
	offset, limit int,
) ([]*recordsDomain.MedicalRecord, error) {
	storedRows, err := u.recordRepo.ListByPatient(ctx, patientID, offset, limit)
	if err != nil {
		return nil, err
	}

	fieldMaps := make([]map[string]piiDomain.FieldValue, len(storedRows))
	for i, stored := range storedRows {
		fieldMaps[i] = stored.FieldValues()
	}

	decrypted := u.decryptor.DecryptEntityBatch(ctx, piiDomain.EntityMedicalRecord, fieldMaps)

	records := make([]*recordsDomain.MedicalRecord, len(storedRows))
	for i, stored := range storedRows {
		records[i] = buildMedicalRecordView(stored, fieldMaps[i], decrypted[i])
	}
	return records, nil
}

// Update replaces the full encrypted record. The repository clears the legacy
// plaintext mirrors on the way through.
func (u *medicalRecordUseCase) Update(
	ctx context.Context,
	recordID uuid.UUID,
	input *recordsDomain.UpdateMedicalRecordInput,
) (*recordsDomain.MedicalRecord, error) {
	stored, err := u.recordRepo.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &recordsDomain.MedicalRecord{
		ID:         recordID,
		PatientID:  stored.PatientID,
		DoctorID:   stored.DoctorID,
		RecordDate: input.RecordDate,
		Diagnosis:  input.Diagnosis,
		Notes:      input.Notes,
		CreatedAt:  stored.CreatedAt,
		UpdatedAt:  now,
	}

	encrypted, err := u.protector.EncryptEntity(piiDomain.EntityMedicalRecord, record.PIIFields())
	if err != nil {
		return nil, err
	}

	updated := &recordsDomain.StoredMedicalRecord{
		ID:         recordID,
		PatientID:  stored.PatientID,
		DoctorID:   stored.DoctorID,
		RecordDate: input.RecordDate,
		CreatedAt:  stored.CreatedAt,
		UpdatedAt:  now,
	}
	updated.SetEncryptedFields(encrypted)

	if err := u.recordRepo.Update(ctx, updated); err != nil {
		return nil, err
	}

	return record, nil
}

// Delete removes a medical record.
func (u *medicalRecordUseCase) Delete(ctx context.Context, recordID uuid.UUID) error {
	return u.recordRepo.Delete(ctx, recordID)
}

// buildMedicalRecordView assembles the application view from decrypted fields.
// A field that was stored but did not decrypt gets the masked placeholder;
// absent fields stay empty.
func buildMedicalRecordView(
	stored *recordsDomain.StoredMedicalRecord,
	fields map[string]piiDomain.FieldValue,
	decrypted map[string]string,
) *recordsDomain.MedicalRecord {
	read := func(name string) string {
		if value, ok := decrypted[name]; ok {
			return value
		}
		if fields[name].State() != piiDomain.FieldAbsent {
			return piiDomain.MaskedValue
		}
		return ""
	}

	return &recordsDomain.MedicalRecord{
		ID:         stored.ID,
		PatientID:  stored.PatientID,
		DoctorID:   stored.DoctorID,
		RecordDate: stored.RecordDate,
		Diagnosis:  read("diagnosis"),
		Notes:      read("notes"),
		CreatedAt:  stored.CreatedAt,
		UpdatedAt:  stored.UpdatedAt,
	}
}

// NewMedicalRecordUseCase creates a new MedicalRecordUseCase with the provided
// dependencies.
func NewMedicalRecordUseCase(
	recordRepo MedicalRecordRepository,
	protector piiService.Protector,
	decryptor piiService.Decryptor,
) MedicalRecordUseCase {
	return &medicalRecordUseCase{
		recordRepo: recordRepo,
		protector:  protector,
		decryptor:  decryptor,
	}
}
