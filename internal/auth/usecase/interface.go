// Package usecase defines business logic interfaces for authentication operations.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/medvault/medvault/internal/auth/domain"
)

// UserRepository defines persistence operations for users.
// Implementations must support transaction-aware operations via context propagation.
type UserRepository interface {
	// Create stores a new user. Returns ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, user *authDomain.User) error

	// Update modifies an existing user.
	Update(ctx context.Context, user *authDomain.User) error

	// Get retrieves a user by ID. Returns ErrUserNotFound if not found.
	Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error)

	// GetByEmail retrieves a user by email. Returns ErrUserNotFound if not found.
	GetByEmail(ctx context.Context, email string) (*authDomain.User, error)
}

// TokenRepository defines persistence operations for authentication tokens.
// Implementations must support transaction-aware operations via context propagation.
type TokenRepository interface {
	// Create stores a new token.
	Create(ctx context.Context, token *authDomain.Token) error

	// GetByTokenHash retrieves a token by hash. Returns ErrTokenNotFound if not found.
	GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Token, error)

	// Revoke marks a token as revoked by hash. No-op for unknown hashes.
	Revoke(ctx context.Context, tokenHash string) error
}

// UserUseCase defines business logic operations for managing users.
type UserUseCase interface {
	// Create registers a new user with a hashed password.
	// Returns ErrEmailTaken if the email is already registered.
	Create(ctx context.Context, input *authDomain.CreateUserInput) (*authDomain.User, error)

	// Get retrieves a user by ID. Returns ErrUserNotFound if not found.
	Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error)

	// Deactivate performs a soft delete by setting IsActive to false, preventing
	// authentication while preserving the user record for the audit trail.
	Deactivate(ctx context.Context, userID uuid.UUID) error
}

// TokenUseCase defines business logic operations for login and token validation.
type TokenUseCase interface {
	// Login authenticates a user by email and password and issues a bearer token.
	//
	// Returns ErrInvalidCredentials for unknown emails and wrong passwords alike,
	// ErrAccountLocked while the account is locked out, and ErrUserInactive for
	// deactivated accounts. Failed attempts increment the lockout counter; a
	// successful login resets it.
	Login(ctx context.Context, input *authDomain.LoginInput) (*authDomain.LoginOutput, error)

	// Authenticate validates a token hash and returns the associated user.
	// Returns ErrInvalidCredentials for unknown, expired, or revoked tokens.
	Authenticate(ctx context.Context, tokenHash string) (*authDomain.User, error)

	// Logout revokes the token with the given hash. Idempotent.
	Logout(ctx context.Context, tokenHash string) error
}
