// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"
	"github.com/jellydator/validation/is"
)

// CreateAppointmentRequest contains the data needed to book an appointment.
type CreateAppointmentRequest struct {
	PatientID string `json:"patient_id"`
	DoctorID  string `json:"doctor_id"`
	StartsAt  string `json:"starts_at"`
	EndsAt    string `json:"ends_at"`
}

// Validate checks if the create appointment request is valid.
func (r *CreateAppointmentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PatientID, validation.Required, is.UUID),
		validation.Field(&r.DoctorID, validation.Required, is.UUID),
		validation.Field(&r.StartsAt, validation.Required, validation.Date("2006-01-02T15:04:05Z07:00")),
		validation.Field(&r.EndsAt, validation.Required, validation.Date("2006-01-02T15:04:05Z07:00")),
	)
}

// ChangeAppointmentStatusRequest contains the target lifecycle state.
type ChangeAppointmentStatusRequest struct {
	Status string `json:"status"`
}

// Validate checks if the change status request is valid.
func (r *ChangeAppointmentStatusRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Status, validation.Required,
			validation.In("scheduled", "confirmed", "completed", "cancelled")),
	)
}
