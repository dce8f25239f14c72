package main

import (
	"context"
	"log/slog"

	cli "github.com/urfave/cli/v3"

	"github.com/funilhq/funil/pkg/cmd"
	"github.com/funilhq/funil/pkg/dispatcher"
	"github.com/funilhq/funil/pkg/engine"
	"github.com/funilhq/funil/pkg/eventbus"
	"github.com/funilhq/funil/pkg/log"
	"github.com/funilhq/funil/pkg/otelhelper"
	"github.com/funilhq/funil/pkg/registry"
	"github.com/funilhq/funil/pkg/rules"
	"github.com/funilhq/funil/pkg/services"
	"github.com/funilhq/funil/pkg/storage"
)

// appRuntime wires the shared pieces every subcommand needs: storage,
// the node registry, the engine and the services built on top of them.
type appRuntime struct {
	logger      *slog.Logger
	store       storage.RecordStore
	definitions *storage.Definitions
	executions  *storage.Executions
	registry    *registry.Registry
	engine      *engine.Engine
	bus         eventbus.EventBus
	workflows   *services.Workflow
	runs        *services.Execution
	dispatcher  *dispatcher.Dispatcher
}

// newAppRuntime builds the runtime from the root command's flags. The event
// bus is only connected when withBus is set; the api command for example
// serves fine without one.
func newAppRuntime(ctx context.Context, command *cli.Command, module string, withBus bool) (*appRuntime, error) {
	log.Setup(command.String("log-level"), command.String("log-format"))

	logger := log.WithModule(module)

	store, err := cmd.NewStore(ctx, logger, command.String("database-url"))
	if err != nil {
		return nil, err
	}

	reg := cmd.NewRegistry(logger, store, command.Duration("max-delay"), command.Int("fetch-limit"))

	definitions := storage.NewDefinitions(store)
	executions := storage.NewExecutions(store)

	eng := engine.NewEngine(logger, reg, executions)

	rt := &appRuntime{
		logger:      logger,
		store:       store,
		definitions: definitions,
		executions:  executions,
		registry:    reg,
		engine:      eng,
	}

	if withBus {
		bus, err := cmd.NewEventBus(command.String("event-bus"), "funil-"+module, logger)
		if err != nil {
			rt.close(ctx)

			return nil, err
		}

		rt.bus = bus
		eng.WithEventBus(bus)
	}

	if command.Bool("tracing") {
		tracer, err := otelhelper.NewTracer(ctx, "funil-"+module)
		if err != nil {
			logger.Warn("Tracing disabled, exporter setup failed", "error", err)
		} else {
			eng.WithTracer(tracer)
		}
	}

	ruleEngine := rules.NewEngine(logger, storage.NewRules(store), reg)

	rt.workflows = services.NewWorkflow(store, reg)
	rt.runs = services.NewExecution(store, eng)
	rt.dispatcher = dispatcher.NewDispatcher(logger, definitions, eng).WithRules(ruleEngine)

	return rt, nil
}

func (rt *appRuntime) close(ctx context.Context) {
	if rt.bus != nil {
		if err := rt.bus.Close(); err != nil {
			rt.logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}

	if err := rt.store.Close(ctx); err != nil {
		rt.logger.ErrorContext(ctx, "Failed to close store", "error", err)
	}
}
