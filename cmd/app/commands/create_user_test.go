package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/medvault/medvault/internal/auth/domain"
	patientsDomain "github.com/medvault/medvault/internal/patients/domain"
	piiDomain "github.com/medvault/medvault/internal/pii/domain"
)

type mockUserUseCase struct {
	mock.Mock
}

func (m *mockUserUseCase) Create(ctx context.Context, input *authDomain.CreateUserInput) (*authDomain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

func (m *mockUserUseCase) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

func (m *mockUserUseCase) Deactivate(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockPatientUseCase struct {
	mock.Mock
}

func (m *mockPatientUseCase) Create(ctx context.Context, input *patientsDomain.CreatePatientInput) (*patientsDomain.Patient, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patientsDomain.Patient), args.Error(1)
}

func (m *mockPatientUseCase) Get(ctx context.Context, patientID uuid.UUID) (*patientsDomain.Patient, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patientsDomain.Patient), args.Error(1)
}

func (m *mockPatientUseCase) List(ctx context.Context, offset, limit int) ([]*patientsDomain.Patient, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*patientsDomain.Patient), args.Error(1)
}

func (m *mockPatientUseCase) Update(ctx context.Context, patientID uuid.UUID, input *patientsDomain.UpdatePatientInput) (*patientsDomain.Patient, error) {
	args := m.Called(ctx, patientID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patientsDomain.Patient), args.Error(1)
}

func (m *mockPatientUseCase) UpdateFromEncryptedPayload(ctx context.Context, patientID uuid.UUID, envelope *piiDomain.Envelope) (*patientsDomain.Patient, error) {
	args := m.Called(ctx, patientID, envelope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*patientsDomain.Patient), args.Error(1)
}

func (m *mockPatientUseCase) Delete(ctx context.Context, patientID uuid.UUID) error {
	args := m.Called(ctx, patientID)
	return args.Error(0)
}

// fakeTxManager runs the function directly without a database transaction.
type fakeTxManager struct{}

func (f *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestRunCreateUser(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("doctor", func(t *testing.T) {
		userUseCase := &mockUserUseCase{}
		patientUseCase := &mockPatientUseCase{}

		userID := uuid.Must(uuid.NewV7())
		userUseCase.On("Create", mock.Anything, &authDomain.CreateUserInput{
			Email:    "doctor@example.com",
			Password: "secret",
			Role:     authDomain.RoleDoctor,
		}).Return(&authDomain.User{
			ID:    userID,
			Email: "doctor@example.com",
			Role:  authDomain.RoleDoctor,
		}, nil)

		var out bytes.Buffer
		err := RunCreateUser(
			ctx, userUseCase, patientUseCase, &fakeTxManager{}, logger, &out,
			"doctor@example.com", "secret", "doctor", "", "", "",
		)

		require.NoError(t, err)
		require.Contains(t, out.String(), userID.String())
		patientUseCase.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		userUseCase.AssertExpectations(t)
	})

	t.Run("patient-with-profile", func(t *testing.T) {
		userUseCase := &mockUserUseCase{}
		patientUseCase := &mockPatientUseCase{}

		patientID := uuid.Must(uuid.NewV7())
		userID := uuid.Must(uuid.NewV7())

		patientUseCase.On("Create", mock.Anything, &patientsDomain.CreatePatientInput{
			FirstName:   "Ana",
			LastName:    "Souza",
			Email:       "ana@example.com",
			DateOfBirth: "1990-04-01",
		}).Return(&patientsDomain.Patient{ID: patientID}, nil)

		userUseCase.On("Create", mock.Anything, mock.MatchedBy(func(input *authDomain.CreateUserInput) bool {
			return input.Role == authDomain.RolePatient &&
				input.PatientID != nil && *input.PatientID == patientID
		})).Return(&authDomain.User{
			ID:        userID,
			Email:     "ana@example.com",
			Role:      authDomain.RolePatient,
			PatientID: &patientID,
		}, nil)

		var out bytes.Buffer
		err := RunCreateUser(
			ctx, userUseCase, patientUseCase, &fakeTxManager{}, logger, &out,
			"ana@example.com", "secret", "patient", "Ana", "Souza", "1990-04-01",
		)

		require.NoError(t, err)
		require.Contains(t, out.String(), userID.String())
		require.Contains(t, out.String(), patientID.String())
		userUseCase.AssertExpectations(t)
		patientUseCase.AssertExpectations(t)
	})

	t.Run("patient-without-profile-fields", func(t *testing.T) {
		userUseCase := &mockUserUseCase{}
		patientUseCase := &mockPatientUseCase{}

		err := RunCreateUser(
			ctx, userUseCase, patientUseCase, &fakeTxManager{}, logger, io.Discard,
			"ana@example.com", "secret", "patient", "", "", "",
		)

		require.Error(t, err)
		require.Contains(t, err.Error(), "--first-name and --last-name are required")
	})

	t.Run("invalid-role", func(t *testing.T) {
		err := RunCreateUser(
			ctx, &mockUserUseCase{}, &mockPatientUseCase{}, &fakeTxManager{}, logger, io.Discard,
			"x@example.com", "secret", "superuser", "", "", "",
		)

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid role")
	})

	t.Run("profile-failure-aborts-user", func(t *testing.T) {
		userUseCase := &mockUserUseCase{}
		patientUseCase := &mockPatientUseCase{}

		patientUseCase.On("Create", mock.Anything, mock.Anything).
			Return(nil, errors.New("encryption failed"))

		err := RunCreateUser(
			ctx, userUseCase, patientUseCase, &fakeTxManager{}, logger, io.Discard,
			"ana@example.com", "secret", "patient", "Ana", "Souza", "",
		)

		require.Error(t, err)
		userUseCase.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
