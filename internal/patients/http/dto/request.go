// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"
	"github.com/jellydator/validation/is"
)

// CreatePatientRequest contains the plaintext profile for patient creation.
// The transport layer protects these values; at rest they exist only as
// envelopes.
type CreatePatientRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	SSN         string `json:"ssn"`
	DateOfBirth string `json:"date_of_birth"`
}

// Validate checks if the create patient request is valid.
func (r *CreatePatientRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Phone, validation.Length(0, 32)),
		validation.Field(&r.Address, validation.Length(0, 1024)),
		validation.Field(&r.SSN, validation.Length(0, 32)),
		validation.Field(&r.DateOfBirth, validation.Date("2006-01-02")),
	)
}

// UpdatePatientRequest contains the plaintext profile for a full update.
type UpdatePatientRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	SSN         string `json:"ssn"`
	DateOfBirth string `json:"date_of_birth"`
}

// Validate checks if the update patient request is valid.
func (r *UpdatePatientRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Phone, validation.Length(0, 32)),
		validation.Field(&r.Address, validation.Length(0, 1024)),
		validation.Field(&r.SSN, validation.Length(0, 32)),
		validation.Field(&r.DateOfBirth, validation.Date("2006-01-02")),
	)
}

// EncryptedUpdateRequest carries a client-encrypted profile update: the whole
// update payload sealed into one envelope at the boundary.
type EncryptedUpdateRequest struct {
	Ciphertext []byte `json:"ciphertext"`
	IV         []byte `json:"iv"`
	Tag        []byte `json:"tag"`
}

// Validate checks the envelope members are present.
func (r *EncryptedUpdateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Ciphertext, validation.Required),
		validation.Field(&r.IV, validation.Required),
		validation.Field(&r.Tag, validation.Required),
	)
}
