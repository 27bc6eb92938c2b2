package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated principal. Patients are linked to their patient
// profile through PatientID; doctors and admins have no profile link.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	// PatientID links a patient user to their patient profile, nil otherwise.
	PatientID *uuid.UUID
	// FailedLoginAttempts counts consecutive failed logins since the last success.
	FailedLoginAttempts int
	// LockedUntil is set when FailedLoginAttempts reaches the configured maximum.
	LockedUntil *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsLocked reports whether the account is locked out at the given instant.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// CreateUserInput contains the parameters for creating a user.
type CreateUserInput struct {
	Email     string
	Password  string
	Role      Role
	PatientID *uuid.UUID
}

// LoginInput contains the credentials presented at the login endpoint.
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput contains the result of a successful login. The plain token is
// only returned once; the server stores its hash.
type LoginOutput struct {
	PlainToken string
	ExpiresAt  time.Time
}
