// Package domain defines medical record and consultation models.
//
// Clinical narrative fields (diagnosis, notes) are sensitive: the persistence
// shapes carry them only as encrypted envelopes, with legacy plaintext mirror
// columns tolerated on read for pre-encryption rows.
package domain

import (
	"time"

	"github.com/google/uuid"

	piiDomain "github.com/medvault/medvault/internal/pii/domain"
)

// MedicalRecord is the decrypted application view of a medical record. Fields
// that could not be decrypted carry the masked placeholder instead of plaintext.
type MedicalRecord struct {
	ID         uuid.UUID
	PatientID  uuid.UUID
	DoctorID   uuid.UUID
	RecordDate time.Time
	Diagnosis  string
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PIIFields returns the record's sensitive fields keyed by column name, ready
// for entity encryption.
func (r *MedicalRecord) PIIFields() map[string]string {
	return map[string]string{
		"diagnosis": r.Diagnosis,
		"notes":     r.Notes,
	}
}

// StoredMedicalRecord is the persistence shape of a medical record: one
// envelope column per sensitive field plus the legacy plaintext mirrors.
type StoredMedicalRecord struct {
	ID         uuid.UUID
	PatientID  uuid.UUID
	DoctorID   uuid.UUID
	RecordDate time.Time

	DiagnosisEncrypted []byte
	NotesEncrypted     []byte

	// Legacy plaintext mirrors, read-only fallbacks for pre-migration rows.
	DiagnosisLegacy string
	NotesLegacy     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FieldValues resolves every sensitive column pair to its read-time variant.
// The envelope wins when both representations are present.
func (sr *StoredMedicalRecord) FieldValues() map[string]piiDomain.FieldValue {
	return map[string]piiDomain.FieldValue{
		"diagnosis": piiDomain.ReadStoredField(sr.DiagnosisEncrypted, sr.DiagnosisLegacy),
		"notes":     piiDomain.ReadStoredField(sr.NotesEncrypted, sr.NotesLegacy),
	}
}

// SetEncryptedFields fills the envelope columns from the encryption output.
// Columns not present in the map are cleared.
func (sr *StoredMedicalRecord) SetEncryptedFields(encrypted map[string][]byte) {
	sr.DiagnosisEncrypted = encrypted["diagnosis"+piiDomain.EncryptedFieldSuffix]
	sr.NotesEncrypted = encrypted["notes"+piiDomain.EncryptedFieldSuffix]
}

// CreateMedicalRecordInput contains the plaintext input for record creation.
// DoctorID is taken from the authenticated principal, not from the request.
type CreateMedicalRecordInput struct {
	PatientID  uuid.UUID
	DoctorID   uuid.UUID
	RecordDate time.Time
	Diagnosis  string
	Notes      string
}

// UpdateMedicalRecordInput contains the plaintext input for a full update.
// The write path replaces every sensitive column; there are no partial updates.
type UpdateMedicalRecordInput struct {
	RecordDate time.Time
	Diagnosis  string
	Notes      string
}
