// Command funil runs the CRM workflow automation engine: the HTTP API, the
// event worker, one-shot dispatch and manual runs.
package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
)

func main() {
	if err := rootCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:                  "funil",
		Usage:                 "CRM workflow automation engine",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL (empty selects the in-memory store)",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.DurationFlag{
				Name:    "max-delay",
				Usage:   "Upper bound for delay nodes",
				Value:   0,
				Sources: cli.EnvVars("MAX_DELAY"),
			},
			&cli.IntFlag{
				Name:    "fetch-limit",
				Usage:   "Row cap for fetch_data nodes",
				Value:   0,
				Sources: cli.EnvVars("FETCH_LIMIT"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
		},
		Commands: []*cli.Command{
			apiCommand(),
			workerCommand(),
			dispatchCommand(),
			runCommand(),
		},
	}
}
