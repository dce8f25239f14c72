package main

import (
	"context"

	cli "github.com/urfave/cli/v3"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run a workflow once with a manual trigger",
		ArgsUsage: "<workflow-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "trigger-event",
				Usage: "Trigger event name recorded on the execution",
				Value: "manual",
			},
			&cli.StringFlag{
				Name:  "payload",
				Usage: "Trigger payload as a JSON object",
				Value: "{}",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			workflowID := command.Args().First()
			if workflowID == "" {
				return cli.Exit("a workflow id is required", 1)
			}

			payload, err := parsePayload(command.String("payload"))
			if err != nil {
				return err
			}

			rt, err := newAppRuntime(ctx, command, "run", false)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			result, err := rt.runs.Run(ctx, workflowID, command.String("trigger-event"), payload)
			if err != nil {
				return err
			}

			return printJSON(result)
		},
	}
}
