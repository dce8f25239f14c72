// Package dispatcher routes CRM domain events to the workflow definitions
// subscribed to them. Each matched definition runs in its own goroutine with
// its own execution record, so one broken workflow cannot poison another.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/funilhq/funil/pkg/conditions"
	"github.com/funilhq/funil/pkg/engine"
	"github.com/funilhq/funil/pkg/eventbus"
	"github.com/funilhq/funil/pkg/events"
	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/rules"
	"github.com/funilhq/funil/pkg/storage"
)

type Dispatcher struct {
	logger      *slog.Logger
	definitions *storage.Definitions
	engine      *engine.Engine
	rules       *rules.Engine
}

func NewDispatcher(logger *slog.Logger, definitions *storage.Definitions, eng *engine.Engine) *Dispatcher {
	return &Dispatcher{
		logger:      logger.With("module", "dispatcher"),
		definitions: definitions,
		engine:      eng,
	}
}

// WithRules makes the dispatcher also apply flat automation rules to every
// domain event it handles.
func (d *Dispatcher) WithRules(ruleEngine *rules.Engine) *Dispatcher {
	d.rules = ruleEngine

	return d
}

// Dispatch runs every active, matching event-triggered definition for the
// domain event and waits for all of them. The returned results are in no
// particular order.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	eventName, entityType, entityID string,
	payload map[string]any,
) ([]*engine.RunResult, error) {
	defs, err := d.definitions.ActiveByTrigger(ctx, models.TriggerTypeEvent)
	if err != nil {
		return nil, fmt.Errorf("failed to load definitions for event %s: %w", eventName, err)
	}

	composed := composePayload(eventName, entityType, entityID, payload)

	var matched []*models.WorkflowDefinition

	for _, def := range defs {
		if def.TriggerConfig.Event != eventName {
			continue
		}

		if !triggerConditionsPass(def, composed) {
			d.logger.Debug("Trigger conditions not met, skipping workflow",
				"workflow_id", def.ID, "event", eventName)

			continue
		}

		matched = append(matched, def)
	}

	d.logger.Info("Dispatching domain event",
		"event", eventName,
		"entity_type", entityType,
		"entity_id", entityID,
		"matched_workflows", len(matched))

	results := make([]*engine.RunResult, len(matched))

	var wg sync.WaitGroup

	for i, def := range matched {
		wg.Add(1)

		go func(i int, def *models.WorkflowDefinition) {
			defer wg.Done()

			result, err := d.engine.RunOnce(ctx, def, eventName, composed)
			if err != nil {
				d.logger.Error("Workflow run aborted",
					"workflow_id", def.ID, "event", eventName, "error", err)

				result = &engine.RunResult{Success: false, Error: err.Error()}
			}

			results[i] = result
		}(i, def)
	}

	wg.Wait()

	d.applyRules(ctx, eventName, entityType, entityID, payload)

	return results, nil
}

// applyRules runs the flat automation rules for the event. Rule failures are
// logged, not returned: rules are best-effort side effects next to the
// workflow runs.
func (d *Dispatcher) applyRules(ctx context.Context, eventName, entityType, entityID string, payload map[string]any) {
	if d.rules == nil {
		return
	}

	outcomes, err := d.rules.Apply(ctx, eventName, entityType, entityID, payload)
	if err != nil {
		d.logger.Error("Failed to apply automation rules", "event", eventName, "error", err)

		return
	}

	for _, outcome := range outcomes {
		for _, action := range outcome.Actions {
			if !action.Success {
				d.logger.Warn("Automation rule action failed",
					"rule_id", outcome.RuleID, "action", action.Type, "error", action.Error)
			}
		}
	}
}

// SubscribeTo wires the dispatcher to domain events arriving on the bus.
func (d *Dispatcher) SubscribeTo(bus eventbus.EventBus) error {
	return bus.Handle(events.DomainEventReceived, func(ctx context.Context, event any) error {
		domainEvent, ok := event.(*events.DomainEvent)
		if !ok {
			return fmt.Errorf("unexpected event payload for %s: %T", events.DomainEventReceived, event)
		}

		_, err := d.Dispatch(ctx, domainEvent.Name, domainEvent.EntityType, domainEvent.EntityID, domainEvent.Payload)

		return err
	})
}

// composePayload builds the variable scope the trigger conditions and the
// run see: the entity identity, the payload nested under the entity type so
// "lead.name" works, and the raw payload spread last so its own keys win.
func composePayload(eventName, entityType, entityID string, payload map[string]any) map[string]any {
	composed := make(map[string]any, len(payload)+4)

	composed["event"] = eventName
	composed["entity_type"] = entityType
	composed["entity_id"] = entityID

	if entityType != "" {
		composed[entityType] = payload
	}

	for key, value := range payload {
		composed[key] = value
	}

	return composed
}

func triggerConditionsPass(def *models.WorkflowDefinition, variables map[string]any) bool {
	if len(def.TriggerConfig.Conditions) == 0 {
		return true
	}

	predicates := make([]conditions.Condition, 0, len(def.TriggerConfig.Conditions))
	for _, c := range def.TriggerConfig.Conditions {
		predicates = append(predicates, conditions.Condition{
			Field:    c.Field,
			Operator: c.Operator,
			Value:    c.Value,
		})
	}

	return conditions.All(predicates, variables)
}
