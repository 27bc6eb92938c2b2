// Package domain defines authentication and authorization domain models.
// Implements role-based access control with users, opaque bearer tokens,
// and failed-attempt account lockout.
package domain

// Role defines the access level of an authenticated user.
type Role string

const (
	// RolePatient can view their own profile, records, and appointments.
	RolePatient Role = "patient"

	// RoleDoctor can view and write records for patients under their care.
	RoleDoctor Role = "doctor"

	// RoleAdmin can manage users and read the audit trail.
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}
