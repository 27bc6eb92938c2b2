package domain

import (
	"github.com/medvault/medvault/internal/errors"
)

// Authentication and authorization errors.
var (
	// ErrUserNotFound indicates a user with the specified ID or email was not found.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrTokenNotFound indicates a token with the specified hash was not found.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrEmailTaken indicates a user with the specified email already exists.
	ErrEmailTaken = errors.Wrap(errors.ErrConflict, "email already registered")

	// ErrInvalidCredentials indicates the presented credentials do not match.
	// Used for unknown emails, wrong passwords, and invalid tokens alike to
	// prevent account enumeration.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrUserInactive indicates the user exists but has been deactivated.
	ErrUserInactive = errors.Wrap(errors.ErrForbidden, "user is inactive")

	// ErrAccountLocked indicates the account is locked out after repeated
	// failed login attempts.
	ErrAccountLocked = errors.Wrap(errors.ErrLocked, "account temporarily locked")
)
