// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	patientsDomain "github.com/medvault/medvault/internal/patients/domain"
)

// PatientResponse represents a decrypted patient profile in API responses.
// Fields that failed to decrypt carry the masked placeholder.
type PatientResponse struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	SSN         string    `json:"ssn,omitempty"`
	DateOfBirth string    `json:"date_of_birth,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MapPatientToResponse converts a decrypted patient view to an API response.
func MapPatientToResponse(patient *patientsDomain.Patient) PatientResponse {
	return PatientResponse{
		ID:          patient.ID.String(),
		FirstName:   patient.FirstName,
		LastName:    patient.LastName,
		Email:       patient.Email,
		Phone:       patient.Phone,
		Address:     patient.Address,
		SSN:         patient.SSN,
		DateOfBirth: patient.DateOfBirth,
		CreatedAt:   patient.CreatedAt,
		UpdatedAt:   patient.UpdatedAt,
	}
}

// ListPatientsResponse represents a paginated list of patients in API responses.
type ListPatientsResponse struct {
	Data []PatientResponse `json:"data"`
}
