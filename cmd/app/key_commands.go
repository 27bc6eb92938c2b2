package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/medvault/medvault/cmd/app/commands"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "generate-key",
			Usage: "Generate a new 256-bit PII master key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-provider",
					Usage: "KMS provider to wrap the key with (e.g., hashivault, localsecrets); omit for a plain hex key",
				},
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Usage: "URI of the KMS wrapping key (e.g., base64key://..., hashivault://...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunGenerateKey(
					ctx,
					commands.DefaultIO().Writer,
					cmd.String("kms-provider"),
					cmd.String("kms-key-uri"),
				)
			},
		},
	}
}
