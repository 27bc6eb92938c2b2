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

// MySQLUserRepository implements User persistence for MySQL.
// UUIDs are stored as CHAR(36) strings.
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQL user repository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

// Create inserts a new User. Returns ErrEmailTaken on a duplicate email.
func (m *MySQLUserRepository) Create(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO users (id, email, password_hash, role, is_active, patient_id,
				failed_login_attempts, locked_until, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		user.ID.String(),
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		uuidPtrToString(user.PatientID),
		user.FailedLoginAttempts,
		user.LockedUntil,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return authDomain.ErrEmailTaken
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// Update modifies an existing User.
func (m *MySQLUserRepository) Update(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE users
			  SET email = ?,
				  password_hash = ?,
				  role = ?,
				  is_active = ?,
				  patient_id = ?,
				  failed_login_attempts = ?,
				  locked_until = ?,
				  updated_at = ?
			  WHERE id = ?`

	_, err := querier.ExecContext(
		ctx,
		query,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		uuidPtrToString(user.PatientID),
		user.FailedLoginAttempts,
		user.LockedUntil,
		user.UpdatedAt,
		user.ID.String(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update user")
	}
	return nil
}

// Get retrieves a User by ID. Returns ErrUserNotFound if the user doesn't exist.
func (m *MySQLUserRepository) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	return m.getByQuery(ctx,
		`SELECT id, email, password_hash, role, is_active, patient_id,
			failed_login_attempts, locked_until, created_at, updated_at
		 FROM users WHERE id = ?`,
		userID.String(),
	)
}

// GetByEmail retrieves a User by email. Returns ErrUserNotFound if no user
// with the email exists.
func (m *MySQLUserRepository) GetByEmail(ctx context.Context, email string) (*authDomain.User, error) {
	return m.getByQuery(ctx,
		`SELECT id, email, password_hash, role, is_active, patient_id,
			failed_login_attempts, locked_until, created_at, updated_at
		 FROM users WHERE email = ?`,
		email,
	)
}

func (m *MySQLUserRepository) getByQuery(
	ctx context.Context,
	query string,
	arg any,
) (*authDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	var user authDomain.User
	var idStr string
	var patientIDStr sql.NullString
	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&idStr,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&patientIDStr,
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

	user.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse user id")
	}
	if patientIDStr.Valid {
		patientID, err := uuid.Parse(patientIDStr.String)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse patient id")
		}
		user.PatientID = &patientID
	}

	return &user, nil
}

// uuidPtrToString converts an optional UUID to a nullable string column value.
func uuidPtrToString(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
