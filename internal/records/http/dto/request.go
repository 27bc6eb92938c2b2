// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"
	"github.com/jellydator/validation/is"
)

// CreateMedicalRecordRequest contains the plaintext input for record creation.
// The doctor is taken from the authenticated principal, never from the body.
type CreateMedicalRecordRequest struct {
	PatientID  string `json:"patient_id"`
	RecordDate string `json:"record_date"`
	Diagnosis  string `json:"diagnosis"`
	Notes      string `json:"notes"`
}

// Validate checks if the create medical record request is valid.
func (r *CreateMedicalRecordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PatientID, validation.Required, is.UUID),
		validation.Field(&r.RecordDate, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&r.Diagnosis, validation.Required, validation.Length(1, 4096)),
		validation.Field(&r.Notes, validation.Length(0, 16384)),
	)
}

// UpdateMedicalRecordRequest contains the plaintext input for a full update.
type UpdateMedicalRecordRequest struct {
	RecordDate string `json:"record_date"`
	Diagnosis  string `json:"diagnosis"`
	Notes      string `json:"notes"`
}

// Validate checks if the update medical record request is valid.
func (r *UpdateMedicalRecordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RecordDate, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&r.Diagnosis, validation.Required, validation.Length(1, 4096)),
		validation.Field(&r.Notes, validation.Length(0, 16384)),
	)
}

// CreateConsultationRequest contains the plaintext input for consultation
// creation.
type CreateConsultationRequest struct {
	PatientID        string `json:"patient_id"`
	ConsultationDate string `json:"consultation_date"`
	Notes            string `json:"notes"`
}

// Validate checks if the create consultation request is valid.
func (r *CreateConsultationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PatientID, validation.Required, is.UUID),
		validation.Field(&r.ConsultationDate, validation.Required, validation.Date("2006-01-02T15:04:05Z07:00")),
		validation.Field(&r.Notes, validation.Required, validation.Length(1, 16384)),
	)
}

// UpdateConsultationRequest contains the plaintext input for a full update.
type UpdateConsultationRequest struct {
	ConsultationDate string `json:"consultation_date"`
	Notes            string `json:"notes"`
}

// Validate checks if the update consultation request is valid.
func (r *UpdateConsultationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ConsultationDate, validation.Required, validation.Date("2006-01-02T15:04:05Z07:00")),
		validation.Field(&r.Notes, validation.Required, validation.Length(1, 16384)),
	)
}
