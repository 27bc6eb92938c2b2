// Package repository implements persistence for users and authentication tokens.
// Repositories support both PostgreSQL and MySQL with transaction support via
// database.GetTx().
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	authDomain "github.com/medvault/medvault/internal/auth/domain"
	"github.com/medvault/medvault/internal/database"
	apperrors "github.com/medvault/medvault/internal/errors"
)

// PostgreSQLUserRepository implements User persistence for PostgreSQL.
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// NewPostgreSQLUserRepository creates a new PostgreSQL user repository.
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{db: db}
}

// Create inserts a new User. Returns ErrEmailTaken on a duplicate email.
func (p *PostgreSQLUserRepository) Create(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO users (id, email, password_hash, role, is_active, patient_id,
				failed_login_attempts, locked_until, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.PatientID,
		user.FailedLoginAttempts,
		user.LockedUntil,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return authDomain.ErrEmailTaken
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}

// Update modifies an existing User.
func (p *PostgreSQLUserRepository) Update(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE users
			  SET email = $1,
				  password_hash = $2,
				  role = $3,
				  is_active = $4,
				  patient_id = $5,
				  failed_login_attempts = $6,
				  locked_until = $7,
				  updated_at = $8
			  WHERE id = $9`

	_, err := querier.ExecContext(
		ctx,
		query,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.PatientID,
		user.FailedLoginAttempts,
		user.LockedUntil,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update user")
	}
	return nil
}

// Get retrieves a User by ID. Returns ErrUserNotFound if the user doesn't exist.
func (p *PostgreSQLUserRepository) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	return p.getByQuery(ctx,
		`SELECT id, email, password_hash, role, is_active, patient_id,
			failed_login_attempts, locked_until, created_at, updated_at
		 FROM users WHERE id = $1`,
		userID,
	)
}

// GetByEmail retrieves a User by email. Returns ErrUserNotFound if no user
// with the email exists.
func (p *PostgreSQLUserRepository) GetByEmail(ctx context.Context, email string) (*authDomain.User, error) {
	return p.getByQuery(ctx,
		`SELECT id, email, password_hash, role, is_active, patient_id,
			failed_login_attempts, locked_until, created_at, updated_at
		 FROM users WHERE email = $1`,
		email,
	)
}

func (p *PostgreSQLUserRepository) getByQuery(
	ctx context.Context,
	query string,
	arg any,
) (*authDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	var user authDomain.User
	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&user.PatientID,
		&user.FailedLoginAttempts,
		&user.LockedUntil,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}
	return &user, nil
}
