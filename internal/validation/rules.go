// Package validation provides custom validation rules for the application.
package validation

import (
	"encoding/hex"
	"fmt"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/medvault/medvault/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// HexKey validates that a string is a hex-encoded key of exactly ByteLen bytes.
type HexKey struct {
	ByteLen int
}

// Validate checks the value decodes from hex to exactly ByteLen bytes.
func (h HexKey) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_hex_key", "key must be a string")
	}

	decoded, err := hex.DecodeString(s)
	if err != nil {
		return validation.NewError("validation_hex_key", "key must be hex-encoded")
	}
	if len(decoded) != h.ByteLen {
		return validation.NewError(
			"validation_hex_key_size",
			fmt.Sprintf("key must decode to exactly %d bytes", h.ByteLen),
		)
	}

	return nil
}

// PasswordStrength validates password meets minimum security requirements.
type PasswordStrength struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireNumber bool
}

// Validate checks if the password meets the configured requirements.
func (p PasswordStrength) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_strength", "password must be a string")
	}

	if len(s) < p.MinLength {
		return validation.NewError(
			"validation_password_min_length",
			fmt.Sprintf("password must be at least %d characters", p.MinLength),
		)
	}

	if p.RequireUpper && !hasClass(s, unicode.IsUpper) {
		return validation.NewError(
			"validation_password_uppercase",
			"password must contain at least one uppercase letter",
		)
	}

	if p.RequireLower && !hasClass(s, unicode.IsLower) {
		return validation.NewError(
			"validation_password_lowercase",
			"password must contain at least one lowercase letter",
		)
	}

	if p.RequireNumber && !hasClass(s, unicode.IsNumber) {
		return validation.NewError(
			"validation_password_number",
			"password must contain at least one number",
		)
	}

	return nil
}

// hasClass reports whether the string contains at least one rune in the class.
func hasClass(s string, class func(rune) bool) bool {
	for _, r := range s {
		if class(r) {
			return true
		}
	}
	return false
}
