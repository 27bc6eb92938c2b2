package domain

import (
	apperrors "github.com/medvault/medvault/internal/errors"
)

var (
	// ErrMedicalRecordNotFound is returned when a medical record is not found.
	ErrMedicalRecordNotFound = apperrors.Wrap(apperrors.ErrNotFound, "medical record not found")

	// ErrConsultationNotFound is returned when a consultation is not found.
	ErrConsultationNotFound = apperrors.Wrap(apperrors.ErrNotFound, "consultation not found")
)
