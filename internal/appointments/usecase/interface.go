// Package usecase implements business logic orchestration for appointments.
package usecase

import (
	"context"

	"github.com/google/uuid"

	appointmentsDomain "github.com/medvault/medvault/internal/appointments/domain"
)

// AppointmentRepository defines persistence operations for appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *appointmentsDomain.Appointment) error
	Update(ctx context.Context, appointment *appointmentsDomain.Appointment) error
	Get(ctx context.Context, appointmentID uuid.UUID) (*appointmentsDomain.Appointment, error)
	ListByPatient(
		ctx context.Context,
		patientID uuid.UUID,
		offset, limit int,
	) ([]*appointmentsDomain.Appointment, error)
	ListByDoctor(
		ctx context.Context,
		doctorID uuid.UUID,
		offset, limit int,
	) ([]*appointmentsDomain.Appointment, error)
	Delete(ctx context.Context, appointmentID uuid.UUID) error
}

// AppointmentUseCase defines business operations for appointments.
type AppointmentUseCase interface {
	Create(
		ctx context.Context,
		input *appointmentsDomain.CreateAppointmentInput,
	) (*appointmentsDomain.Appointment, error)
	Get(ctx context.Context, appointmentID uuid.UUID) (*appointmentsDomain.Appointment, error)
	ListByPatient(
		ctx context.Context,
		patientID uuid.UUID,
		offset, limit int,
	) ([]*appointmentsDomain.Appointment, error)
	ListByDoctor(
		ctx context.Context,
		doctorID uuid.UUID,
		offset, limit int,
	) ([]*appointmentsDomain.Appointment, error)
	ChangeStatus(
		ctx context.Context,
		appointmentID uuid.UUID,
		status appointmentsDomain.Status,
	) (*appointmentsDomain.Appointment, error)
	Delete(ctx context.Context, appointmentID uuid.UUID) error
}
