// Package domain defines appointment models. Appointments carry no direct
// identifiers, only references to patient and doctor rows, so they bypass the
// field encryption pipeline entirely.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Appointment represents a scheduled visit between a patient and a doctor.
type Appointment struct {
	ID        uuid.UUID
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	StartsAt  time.Time
	EndsAt    time.Time
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateAppointmentInput contains the data needed to book an appointment.
type CreateAppointmentInput struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	StartsAt  time.Time
	EndsAt    time.Time
}
