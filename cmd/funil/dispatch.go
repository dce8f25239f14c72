package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
)

func dispatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "dispatch",
		Usage: "Dispatch a single CRM domain event to matching workflows and rules",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "event",
				Usage:    "Domain event name (e.g. lead.created)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "entity-type",
				Usage: "CRM entity type (lead, deal, contact, ...)",
			},
			&cli.StringFlag{
				Name:  "entity-id",
				Usage: "CRM entity identifier",
			},
			&cli.StringFlag{
				Name:  "payload",
				Usage: "Event payload as a JSON object",
				Value: "{}",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			payload, err := parsePayload(command.String("payload"))
			if err != nil {
				return err
			}

			rt, err := newAppRuntime(ctx, command, "dispatch", false)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			results, err := rt.dispatcher.Dispatch(
				ctx,
				command.String("event"),
				command.String("entity-type"),
				command.String("entity-id"),
				payload,
			)
			if err != nil {
				return err
			}

			return printJSON(results)
		},
	}
}

func parsePayload(raw string) (map[string]any, error) {
	payload := map[string]any{}

	if raw == "" {
		return payload, nil
	}

	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("payload must be a JSON object: %w", err)
	}

	return payload, nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}
