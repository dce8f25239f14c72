package main

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	cli "github.com/urfave/cli/v3"

	"github.com/funilhq/funil/pkg/web"
)

const defaultPort = 9091

func apiCommand() *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Serve the workflow management HTTP API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			rt, err := newAppRuntime(ctx, command, "api", false)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			handlers := web.NewAPIHandlers(
				rt.workflows,
				rt.runs,
				rt.dispatcher,
				validator.New(validator.WithRequiredStructEnabled()),
			)

			app := web.NewApp(handlers)

			port := command.Int("port")
			rt.logger.InfoContext(ctx, "Starting API server", "port", port)

			return app.Listen(":" + strconv.Itoa(port))
		},
	}
}
