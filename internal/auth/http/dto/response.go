// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	authDomain "github.com/medvault/medvault/internal/auth/domain"
)

// LoginResponse contains the result of a successful login.
// SECURITY: The token is only returned once and must be saved by the client.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse represents a user in API responses (excludes password hash).
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	PatientID *string   `json:"patient_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MapUserToResponse converts a domain user to an API response.
func MapUserToResponse(user *authDomain.User) UserResponse {
	var patientID *string
	if user.PatientID != nil {
		id := user.PatientID.String()
		patientID = &id
	}
	return UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Role:      string(user.Role),
		IsActive:  user.IsActive,
		PatientID: patientID,
		CreatedAt: user.CreatedAt,
	}
}
