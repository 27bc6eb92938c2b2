package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	appointmentsDomain "github.com/medvault/medvault/internal/appointments/domain"
	apperrors "github.com/medvault/medvault/internal/errors"
)

// appointmentUseCase implements AppointmentUseCase.
type appointmentUseCase struct {
	appointmentRepo AppointmentRepository
}

// Create books a new appointment in the scheduled state.
func (u *appointmentUseCase) Create(
	ctx context.Context,
	input *appointmentsDomain.CreateAppointmentInput,
) (*appointmentsDomain.Appointment, error) {
	if !input.EndsAt.After(input.StartsAt) {
		return nil, appointmentsDomain.ErrInvalidTimeWindow
	}

	now := time.Now().UTC()
	appointment := &appointmentsDomain.Appointment{
		ID:        uuid.Must(uuid.NewV7()),
		PatientID: input.PatientID,
		DoctorID:  input.DoctorID,
		StartsAt:  input.StartsAt,
		EndsAt:    input.EndsAt,
		Status:    appointmentsDomain.StatusScheduled,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := u.appointmentRepo.Create(ctx, appointment); err != nil {
		return nil, err
	}

	return appointment, nil
}

// Get retrieves an appointment.
func (u *appointmentUseCase) Get(
	ctx context.Context,
	appointmentID uuid.UUID,
) (*appointmentsDomain.Appointment, error) {
	return u.appointmentRepo.Get(ctx, appointmentID)
}

// ListByPatient retrieves appointments for one patient.
func (u *appointmentUseCase) ListByPatient(
	ctx context.Context,
	patientID uuid.UUID,
	offset, limit int,
) ([]*appointmentsDomain.Appointment, error) {
	return u.appointmentRepo.ListByPatient(ctx, patientID, offset, limit)
}

// ListByDoctor retrieves appointments for one doctor.
func (u *appointmentUseCase) ListByDoctor(
	ctx context.Context,
	doctorID uuid.UUID,
	offset, limit int,
) ([]*appointmentsDomain.Appointment, error) {
	return u.appointmentRepo.ListByDoctor(ctx, doctorID, offset, limit)
}

// ChangeStatus moves an appointment through its lifecycle. Transitions out of
// terminal states and skips over intermediate states are rejected.
func (u *appointmentUseCase) ChangeStatus(
	ctx context.Context,
	appointmentID uuid.UUID,
	status appointmentsDomain.Status,
) (*appointmentsDomain.Appointment, error) {
	if !status.Valid() {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid appointment status")
	}

	appointment, err := u.appointmentRepo.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if !appointment.Status.CanTransitionTo(status) {
		return nil, appointmentsDomain.ErrInvalidStatusTransition
	}

	appointment.Status = status
	appointment.UpdatedAt = time.Now().UTC()

	if err := u.appointmentRepo.Update(ctx, appointment); err != nil {
		return nil, err
	}

	return appointment, nil
}

// Delete removes an appointment.
func (u *appointmentUseCase) Delete(ctx context.Context, appointmentID uuid.UUID) error {
	return u.appointmentRepo.Delete(ctx, appointmentID)
}

// NewAppointmentUseCase creates a new AppointmentUseCase with the provided
// dependencies.
func NewAppointmentUseCase(appointmentRepo AppointmentRepository) AppointmentUseCase {
	return &appointmentUseCase{appointmentRepo: appointmentRepo}
}
