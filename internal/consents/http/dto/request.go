// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"
	"github.com/jellydator/validation/is"
)

// GrantConsentRequest contains the data needed to grant a consent.
type GrantConsentRequest struct {
	PatientID string `json:"patient_id"`
	Scope     string `json:"scope"`
}

// Validate checks if the grant consent request is valid.
func (r *GrantConsentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PatientID, validation.Required, is.UUID),
		validation.Field(&r.Scope, validation.Required, validation.Length(1, 128)),
	)
}
