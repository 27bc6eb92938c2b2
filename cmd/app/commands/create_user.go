package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	authDomain "github.com/medvault/medvault/internal/auth/domain"
	authUseCase "github.com/medvault/medvault/internal/auth/usecase"
	"github.com/medvault/medvault/internal/database"
	patientsDomain "github.com/medvault/medvault/internal/patients/domain"
	patientsUseCase "github.com/medvault/medvault/internal/patients/usecase"
)

// RunCreateUser creates a new user account.
//
// For the patient role a patient profile is created alongside the account and
// linked to it; profile and account are written in a single transaction so a
// failure cannot leave an account without its profile. Profile PII fields go
// through the regular field encryption path.
func RunCreateUser(
	ctx context.Context,
	userUseCase authUseCase.UserUseCase,
	patientUseCase patientsUseCase.PatientUseCase,
	txManager database.TxManager,
	logger *slog.Logger,
	out io.Writer,
	email, password, roleStr, firstName, lastName, dateOfBirth string,
) error {
	role := authDomain.Role(roleStr)
	if !role.Valid() {
		return fmt.Errorf("invalid role: %s (valid options: patient, doctor, admin)", roleStr)
	}

	if role == authDomain.RolePatient && (firstName == "" || lastName == "") {
		return fmt.Errorf("--first-name and --last-name are required for patient users")
	}

	var user *authDomain.User
	err := txManager.WithTx(ctx, func(ctx context.Context) error {
		input := &authDomain.CreateUserInput{
			Email:    email,
			Password: password,
			Role:     role,
		}

		if role == authDomain.RolePatient {
			patient, err := patientUseCase.Create(ctx, &patientsDomain.CreatePatientInput{
				FirstName:   firstName,
				LastName:    lastName,
				Email:       email,
				DateOfBirth: dateOfBirth,
			})
			if err != nil {
				return fmt.Errorf("failed to create patient profile: %w", err)
			}
			input.PatientID = &patient.ID
		}

		created, err := userUseCase.Create(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		user = created
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)),
	)

	fmt.Fprintln(out, "User created:")
	fmt.Fprintf(out, "  ID:    %s\n", user.ID)
	fmt.Fprintf(out, "  Email: %s\n", user.Email)
	fmt.Fprintf(out, "  Role:  %s\n", user.Role)
	if user.PatientID != nil {
		fmt.Fprintf(out, "  Patient ID: %s\n", user.PatientID)
	}

	return nil
}
