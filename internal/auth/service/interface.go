// Package service provides technical services for authentication operations.
//
// This package implements reusable services for password hashing and
// authentication token generation using industry-standard cryptographic
// practices.
package service

// PasswordService defines operations for password hashing and validation.
// Implementations must use a modern memory-hard hashing algorithm.
type PasswordService interface {
	// HashPassword hashes a plain text password for storage.
	HashPassword(plainPassword string) (hashedPassword string, err error)

	// ComparePassword compares a plain text password against a stored hash.
	// Returns true if the password matches. This is constant-time to prevent
	// timing attacks.
	ComparePassword(plainPassword string, hashedPassword string) bool
}

// TokenService defines operations for authentication token generation and hashing.
// Implementations must use cryptographically secure random generation and
// fast hashing suitable for short-lived tokens.
type TokenService interface {
	// GenerateToken creates a new cryptographically secure random token.
	// Returns both the plain text token (shown to the user once) and the
	// hashed version (stored in the database).
	GenerateToken() (plainToken string, tokenHash string, err error)

	// HashToken hashes a plain text token using SHA-256. Used for token
	// validation by comparing hashes.
	HashToken(plainToken string) string
}
