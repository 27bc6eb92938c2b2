package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/medvault/medvault/internal/auth/domain"
	authService "github.com/medvault/medvault/internal/auth/service"
	"github.com/medvault/medvault/internal/config"
)

// tokenUseCase implements TokenUseCase for login, token validation, and logout.
type tokenUseCase struct {
	config          *config.Config
	userRepo        UserRepository
	tokenRepo       TokenRepository
	passwordService authService.PasswordService
	tokenService    authService.TokenService
}

// Login authenticates a user by email and password and issues a bearer token.
//
// This method:
// 1. Looks up the user by email
// 2. Rejects locked and inactive accounts
// 3. Verifies the password, counting failed attempts toward lockout
// 4. Generates a token, stores its hash, and returns the plain token
//
// Security notes:
//   - Returns ErrInvalidCredentials for both unknown emails and wrong passwords
//     to prevent account enumeration
//   - After Config.LockoutMaxAttempts consecutive failures the account is locked
//     for Config.LockoutDuration; a successful login resets the counter
//   - The plain token is only returned once; the server stores its SHA-256 hash
func (t *tokenUseCase) Login(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.LoginOutput, error) {
	user, err := t.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		// Unknown email gets the same error as a wrong password
		if errors.Is(err, authDomain.ErrUserNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now().UTC()

	if user.IsLocked(now) {
		return nil, authDomain.ErrAccountLocked
	}

	if !user.IsActive {
		return nil, authDomain.ErrUserInactive
	}

	if !t.passwordService.ComparePassword(input.Password, user.PasswordHash) {
		if err := t.registerFailedAttempt(ctx, user, now); err != nil {
			return nil, err
		}
		return nil, authDomain.ErrInvalidCredentials
	}

	// Successful login clears the lockout state
	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		user.FailedLoginAttempts = 0
		user.LockedUntil = nil
		user.UpdatedAt = now
		if err := t.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	plainToken, tokenHash, err := t.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	token := &authDomain.Token{
		ID:        uuid.Must(uuid.NewV7()),
		TokenHash: tokenHash,
		UserID:    user.ID,
		ExpiresAt: now.Add(t.config.AuthTokenExpiration),
		RevokedAt: nil,
		CreatedAt: now,
	}

	if err := t.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	return &authDomain.LoginOutput{
		PlainToken: plainToken,
		ExpiresAt:  token.ExpiresAt,
	}, nil
}

// registerFailedAttempt increments the failure counter and locks the account
// once the configured maximum is reached.
func (t *tokenUseCase) registerFailedAttempt(
	ctx context.Context,
	user *authDomain.User,
	now time.Time,
) error {
	user.FailedLoginAttempts++
	if user.FailedLoginAttempts >= t.config.LockoutMaxAttempts {
		lockedUntil := now.Add(t.config.LockoutDuration)
		user.LockedUntil = &lockedUntil
		user.FailedLoginAttempts = 0
	}
	user.UpdatedAt = now

	return t.userRepo.Update(ctx, user)
}

// Authenticate validates an authentication token and returns the associated user.
//
// Security notes:
//   - Returns ErrInvalidCredentials for token not found, expired, or revoked to
//     prevent enumeration and information leakage
//   - Returns ErrUserInactive if the user exists but has been deactivated
//   - All time comparisons use UTC
func (t *tokenUseCase) Authenticate(ctx context.Context, tokenHash string) (*authDomain.User, error) {
	token, err := t.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, authDomain.ErrTokenNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if token.ExpiresAt.Before(time.Now().UTC()) {
		return nil, authDomain.ErrInvalidCredentials
	}

	if token.RevokedAt != nil {
		return nil, authDomain.ErrInvalidCredentials
	}

	user, err := t.userRepo.Get(ctx, token.UserID)
	if err != nil {
		// Shouldn't happen due to FK constraints, but handle gracefully
		if errors.Is(err, authDomain.ErrUserNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, authDomain.ErrUserInactive
	}

	return user, nil
}

// Logout revokes the token with the given hash. Revoking an unknown or already
// revoked token succeeds silently.
func (t *tokenUseCase) Logout(ctx context.Context, tokenHash string) error {
	return t.tokenRepo.Revoke(ctx, tokenHash)
}

// NewTokenUseCase creates a new TokenUseCase with the provided dependencies.
func NewTokenUseCase(
	cfg *config.Config,
	userRepo UserRepository,
	tokenRepo TokenRepository,
	passwordService authService.PasswordService,
	tokenService authService.TokenService,
) TokenUseCase {
	return &tokenUseCase{
		config:          cfg,
		userRepo:        userRepo,
		tokenRepo:       tokenRepo,
		passwordService: passwordService,
		tokenService:    tokenService,
	}
}
