package dto

import (
	"time"

	appointmentsDomain "github.com/medvault/medvault/internal/appointments/domain"
)

// AppointmentResponse represents an appointment in API responses.
type AppointmentResponse struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patient_id"`
	DoctorID  string    `json:"doctor_id"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MapAppointmentToResponse converts an appointment to an API response.
func MapAppointmentToResponse(appointment *appointmentsDomain.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        appointment.ID.String(),
		PatientID: appointment.PatientID.String(),
		DoctorID:  appointment.DoctorID.String(),
		StartsAt:  appointment.StartsAt,
		EndsAt:    appointment.EndsAt,
		Status:    string(appointment.Status),
		CreatedAt: appointment.CreatedAt,
		UpdatedAt: appointment.UpdatedAt,
	}
}

// ListAppointmentsResponse represents a paginated list of appointments.
type ListAppointmentsResponse struct {
	Data []AppointmentResponse `json:"data"`
}
