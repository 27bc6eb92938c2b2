package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/medvault/medvault/cmd/app/commands"
	"github.com/medvault/medvault/internal/app"
	"github.com/medvault/medvault/internal/config"
)

func getUserCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-user",
			Usage: "Create a new user account, with a patient profile for patient users",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Login email address",
				},
				&cli.StringFlag{
					Name:     "password",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Login password",
				},
				&cli.StringFlag{
					Name:     "role",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "User role: patient, doctor, or admin",
				},
				&cli.StringFlag{
					Name:  "first-name",
					Usage: "Patient first name (patient role only)",
				},
				&cli.StringFlag{
					Name:  "last-name",
					Usage: "Patient last name (patient role only)",
				},
				&cli.StringFlag{
					Name:  "date-of-birth",
					Usage: "Patient date of birth in YYYY-MM-DD format (patient role only)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				userUseCase, err := container.UserUseCase()
				if err != nil {
					return err
				}

				patientUseCase, err := container.PatientUseCase()
				if err != nil {
					return err
				}

				txManager, err := container.TxManager()
				if err != nil {
					return err
				}

				return commands.RunCreateUser(
					ctx,
					userUseCase,
					patientUseCase,
					txManager,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("email"),
					cmd.String("password"),
					cmd.String("role"),
					cmd.String("first-name"),
					cmd.String("last-name"),
					cmd.String("date-of-birth"),
				)
			},
		},
	}
}
