// Package domain defines patient profile models.
//
// Patient demographics are direct identifiers: the persistence shape carries
// them only as encrypted envelopes, while rows written before encryption was
// introduced may still carry legacy plaintext mirror columns. The decrypted
// application view is reconstructed at read time.
package domain

import (
	"time"

	"github.com/google/uuid"

	piiDomain "github.com/medvault/medvault/internal/pii/domain"
)

// Patient is the decrypted application view of a patient profile. Fields that
// could not be decrypted carry the masked placeholder instead of plaintext.
type Patient struct {
	ID          uuid.UUID
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Address     string
	SSN         string
	DateOfBirth string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PIIFields returns the profile's identifying fields keyed by column name,
// ready for entity encryption. Empty fields are included; the encryption path
// skips them.
func (p *Patient) PIIFields() map[string]string {
	return map[string]string{
		"first_name":    p.FirstName,
		"last_name":     p.LastName,
		"email":         p.Email,
		"phone":         p.Phone,
		"address":       p.Address,
		"ssn":           p.SSN,
		"date_of_birth": p.DateOfBirth,
	}
}

// StoredPatient is the persistence shape of a patient profile: one envelope
// column per PII field plus the legacy plaintext mirror columns that
// pre-migration rows still populate. New writes fill only the envelope
// columns.
type StoredPatient struct {
	ID uuid.UUID

	FirstNameEncrypted   []byte
	LastNameEncrypted    []byte
	EmailEncrypted       []byte
	PhoneEncrypted       []byte
	AddressEncrypted     []byte
	SSNEncrypted         []byte
	DateOfBirthEncrypted []byte

	// Legacy plaintext mirrors, read-only fallbacks for pre-migration rows.
	FirstNameLegacy   string
	LastNameLegacy    string
	EmailLegacy       string
	PhoneLegacy       string
	AddressLegacy     string
	SSNLegacy         string
	DateOfBirthLegacy string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FieldValues resolves every PII column pair to its read-time variant. The
// envelope wins when both representations are present.
func (sp *StoredPatient) FieldValues() map[string]piiDomain.FieldValue {
	return map[string]piiDomain.FieldValue{
		"first_name":    piiDomain.ReadStoredField(sp.FirstNameEncrypted, sp.FirstNameLegacy),
		"last_name":     piiDomain.ReadStoredField(sp.LastNameEncrypted, sp.LastNameLegacy),
		"email":         piiDomain.ReadStoredField(sp.EmailEncrypted, sp.EmailLegacy),
		"phone":         piiDomain.ReadStoredField(sp.PhoneEncrypted, sp.PhoneLegacy),
		"address":       piiDomain.ReadStoredField(sp.AddressEncrypted, sp.AddressLegacy),
		"ssn":           piiDomain.ReadStoredField(sp.SSNEncrypted, sp.SSNLegacy),
		"date_of_birth": piiDomain.ReadStoredField(sp.DateOfBirthEncrypted, sp.DateOfBirthLegacy),
	}
}

// SetEncryptedFields fills the envelope columns from the encryption output,
// which keys envelopes by "<field>_encrypted". Columns not present in the map
// are cleared: an entity write replaces the whole encrypted profile.
func (sp *StoredPatient) SetEncryptedFields(encrypted map[string][]byte) {
	sp.FirstNameEncrypted = encrypted["first_name"+piiDomain.EncryptedFieldSuffix]
	sp.LastNameEncrypted = encrypted["last_name"+piiDomain.EncryptedFieldSuffix]
	sp.EmailEncrypted = encrypted["email"+piiDomain.EncryptedFieldSuffix]
	sp.PhoneEncrypted = encrypted["phone"+piiDomain.EncryptedFieldSuffix]
	sp.AddressEncrypted = encrypted["address"+piiDomain.EncryptedFieldSuffix]
	sp.SSNEncrypted = encrypted["ssn"+piiDomain.EncryptedFieldSuffix]
	sp.DateOfBirthEncrypted = encrypted["date_of_birth"+piiDomain.EncryptedFieldSuffix]
}

// CreatePatientInput contains the plaintext profile for patient creation.
type CreatePatientInput struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Address     string
	SSN         string
	DateOfBirth string
}

// UpdatePatientInput contains the plaintext profile for a full update.
// The write path replaces every PII column; there are no partial updates.
type UpdatePatientInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	SSN         string `json:"ssn"`
	DateOfBirth string `json:"date_of_birth"`
}
