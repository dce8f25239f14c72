package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/funilhq/funil/pkg/receivers/redisstream"
	"github.com/funilhq/funil/pkg/receivers/schedule"
)

func workerCommand() *cli.Command {
	return &cli.Command{
		Name:  "worker",
		Usage: "Consume CRM domain events and run matching workflows",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("WORKER_ID"),
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Redis address for the CRM event stream (empty disables the stream consumer)",
				Sources: cli.EnvVars("REDIS_ADDR"),
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				Sources: cli.EnvVars("REDIS_PASSWORD"),
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Usage:   "Redis database number",
				Sources: cli.EnvVars("REDIS_DB"),
			},
			&cli.StringFlag{
				Name:    "redis-stream",
				Usage:   "Redis stream holding CRM domain events",
				Value:   redisstream.DefaultStream,
				Sources: cli.EnvVars("REDIS_STREAM"),
			},
			&cli.StringFlag{
				Name:    "redis-group",
				Usage:   "Consumer group shared by workers",
				Value:   redisstream.DefaultGroup,
				Sources: cli.EnvVars("REDIS_GROUP"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()[:8]
			}

			rt, err := newAppRuntime(ctx, command, "worker", true)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			logger := rt.logger.With("worker_id", workerID)

			logger.InfoContext(ctx, "Initializing worker")

			if err := rt.dispatcher.SubscribeTo(rt.bus); err != nil {
				return err
			}

			if err := rt.bus.Subscribe(ctx); err != nil {
				return err
			}

			scheduler := schedule.NewReceiver(logger, rt.definitions, rt.engine)
			if err := scheduler.Start(ctx); err != nil {
				return err
			}
			defer func() {
				if err := scheduler.Stop(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to stop schedule receiver", "error", err)
				}
			}()

			if addr := command.String("redis-addr"); addr != "" {
				stream := redisstream.NewReceiver(logger, rt.bus, redisstream.Config{
					Addr:     addr,
					Password: command.String("redis-password"),
					DB:       command.Int("redis-db"),
					Stream:   command.String("redis-stream"),
					Group:    command.String("redis-group"),
					Consumer: workerID,
				})
				if err := stream.Start(ctx); err != nil {
					return err
				}
				defer func() {
					if err := stream.Stop(ctx); err != nil {
						logger.ErrorContext(ctx, "Failed to stop stream receiver", "error", err)
					}
				}()
			}

			logger.InfoContext(ctx, "Worker started successfully")

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			<-sigChan
			logger.InfoContext(ctx, "Shutting down worker...")

			return nil
		},
	}
}
