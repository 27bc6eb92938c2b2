package domain

import (
	"time"

	"github.com/google/uuid"

	piiDomain "github.com/medvault/medvault/internal/pii/domain"
)

// Consultation is the decrypted application view of a consultation entry.
type Consultation struct {
	ID               uuid.UUID
	PatientID        uuid.UUID
	DoctorID         uuid.UUID
	ConsultationDate time.Time
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PIIFields returns the consultation's sensitive fields keyed by column name.
func (c *Consultation) PIIFields() map[string]string {
	return map[string]string{
		"notes": c.Notes,
	}
}

// StoredConsultation is the persistence shape of a consultation entry.
type StoredConsultation struct {
	ID               uuid.UUID
	PatientID        uuid.UUID
	DoctorID         uuid.UUID
	ConsultationDate time.Time

	NotesEncrypted []byte

	// Legacy plaintext mirror, read-only fallback for pre-migration rows.
	NotesLegacy string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FieldValues resolves the sensitive column pair to its read-time variant.
func (sc *StoredConsultation) FieldValues() map[string]piiDomain.FieldValue {
	return map[string]piiDomain.FieldValue{
		"notes": piiDomain.ReadStoredField(sc.NotesEncrypted, sc.NotesLegacy),
	}
}

// SetEncryptedFields fills the envelope column from the encryption output.
func (sc *StoredConsultation) SetEncryptedFields(encrypted map[string][]byte) {
	sc.NotesEncrypted = encrypted["notes"+piiDomain.EncryptedFieldSuffix]
}

// CreateConsultationInput contains the plaintext input for consultation
// creation. DoctorID is taken from the authenticated principal.
type CreateConsultationInput struct {
	PatientID        uuid.UUID
	DoctorID         uuid.UUID
	ConsultationDate time.Time
	Notes            string
}

// UpdateConsultationInput contains the plaintext input for a full update.
type UpdateConsultationInput struct {
	ConsultationDate time.Time
	Notes            string
}
