package dto

import (
	"time"

	consentsDomain "github.com/medvault/medvault/internal/consents/domain"
)

// ConsentResponse represents a consent in API responses.
type ConsentResponse struct {
	ID        string     `json:"id"`
	PatientID string     `json:"patient_id"`
	Scope     string     `json:"scope"`
	GrantedBy string     `json:"granted_by"`
	GrantedAt time.Time  `json:"granted_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// MapConsentToResponse converts a consent to an API response.
func MapConsentToResponse(consent *consentsDomain.Consent) ConsentResponse {
	return ConsentResponse{
		ID:        consent.ID.String(),
		PatientID: consent.PatientID.String(),
		Scope:     consent.Scope,
		GrantedBy: consent.GrantedBy.String(),
		GrantedAt: consent.GrantedAt,
		RevokedAt: consent.RevokedAt,
		Active:    consent.Active(),
		CreatedAt: consent.CreatedAt,
		UpdatedAt: consent.UpdatedAt,
	}
}

// ListConsentsResponse represents a paginated list of consents.
type ListConsentsResponse struct {
	Data []ConsentResponse `json:"data"`
}
