package domain

import (
	apperrors "github.com/medvault/medvault/internal/errors"
)

var (
	// ErrAppointmentNotFound is returned when an appointment is not found.
	ErrAppointmentNotFound = apperrors.Wrap(apperrors.ErrNotFound, "appointment not found")

	// ErrInvalidStatusTransition is returned when a status change violates the
	// appointment lifecycle.
	ErrInvalidStatusTransition = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid status transition")

	// ErrInvalidTimeWindow is returned when an appointment does not end after
	// it starts.
	ErrInvalidTimeWindow = apperrors.Wrap(apperrors.ErrInvalidInput, "appointment must end after it starts")
)
