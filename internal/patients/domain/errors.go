package domain

import (
	"github.com/medvault/medvault/internal/errors"
)

// Patient domain errors.
var (
	// ErrPatientNotFound indicates a patient with the specified ID was not found.
	ErrPatientNotFound = errors.Wrap(errors.ErrNotFound, "patient not found")
)
