// Package usecase implements business logic orchestration for authentication operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/medvault/medvault/internal/auth/domain"
	authService "github.com/medvault/medvault/internal/auth/service"
	apperrors "github.com/medvault/medvault/internal/errors"
)

// userUseCase implements UserUseCase for managing users.
type userUseCase struct {
	userRepo        UserRepository
	passwordService authService.PasswordService
}

// Create registers a new user. The password is hashed with Argon2id before
// storage; the plain password is never persisted.
func (u *userUseCase) Create(
	ctx context.Context,
	input *authDomain.CreateUserInput,
) (*authDomain.User, error) {
	if !input.Role.Valid() {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid role")
	}

	passwordHash, err := u.passwordService.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &authDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        input.Email,
		PasswordHash: passwordHash,
		Role:         input.Role,
		IsActive:     true,
		PatientID:    input.PatientID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Get retrieves a user by ID.
func (u *userUseCase) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	return u.userRepo.Get(ctx, userID)
}

// Deactivate performs a soft delete by setting IsActive to false. The user
// record remains for audit attribution.
func (u *userUseCase) Deactivate(ctx context.Context, userID uuid.UUID) error {
	user, err := u.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}

	user.IsActive = false
	user.UpdatedAt = time.Now().UTC()

	return u.userRepo.Update(ctx, user)
}

// NewUserUseCase creates a new UserUseCase with the provided dependencies.
func NewUserUseCase(
	userRepo UserRepository,
	passwordService authService.PasswordService,
) UserUseCase {
	return &userUseCase{
		userRepo:        userRepo,
		passwordService: passwordService,
	}
}
