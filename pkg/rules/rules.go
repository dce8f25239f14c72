// Package rules runs flat automation rules: AND-combined conditions gating
// a list of actions, evaluated per domain event. Rules share the condition
// evaluator and the action executors with the graph engine, so a rule's
// send_email behaves exactly like a workflow's send_email node.
package rules

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/funilhq/funil/pkg/conditions"
	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/registry"
	"github.com/funilhq/funil/pkg/storage"
)

// ActionOutcome is the result of dispatching one rule action.
type ActionOutcome struct {
	Type    models.NodeType `json:"type"`
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
}

// RuleOutcome is the result of evaluating one rule against an event.
type RuleOutcome struct {
	RuleID  string          `json:"rule_id"`
	Matched bool            `json:"matched"`
	Actions []ActionOutcome `json:"actions,omitempty"`
}

// actionTypes is the action-capable subset of the node types. Graph-only
// nodes (condition, delay, loop, fetch_data, trigger) need a flow and an
// execution trail the rule engine does not have.
var actionTypes = map[models.NodeType]bool{
	models.NodeTypeSendEmail:    true,
	models.NodeTypeCreateTask:   true,
	models.NodeTypeNotification: true,
	models.NodeTypeUpdateStatus: true,
}

type Engine struct {
	logger   *slog.Logger
	rules    *storage.Rules
	registry *registry.Registry
}

func NewEngine(logger *slog.Logger, rules *storage.Rules, reg *registry.Registry) *Engine {
	return &Engine{
		logger:   logger.With("module", "rules"),
		rules:    rules,
		registry: reg,
	}
}

// Apply evaluates every active rule bound to the event. Actions of a
// matched rule run in order; a failed action is recorded and the remaining
// actions still run.
func (e *Engine) Apply(
	ctx context.Context,
	event, entityType, entityID string,
	payload map[string]any,
) ([]RuleOutcome, error) {
	active, err := e.rules.ActiveByEvent(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules for event %s: %w", event, err)
	}

	variables := composeVariables(event, entityType, entityID, payload)

	outcomes := make([]RuleOutcome, 0, len(active))

	for _, rule := range active {
		outcome := RuleOutcome{RuleID: rule.ID}

		if !conditionsPass(rule, variables) {
			e.logger.Debug("Rule conditions not met", "rule_id", rule.ID, "event", event)
			outcomes = append(outcomes, outcome)

			continue
		}

		outcome.Matched = true
		outcome.Actions = e.dispatchActions(ctx, rule, variables)

		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

func (e *Engine) dispatchActions(
	ctx context.Context,
	rule *models.AutomationRule,
	variables map[string]any,
) []ActionOutcome {
	results := make([]ActionOutcome, 0, len(rule.Actions))

	executionCtx := &models.ExecutionContext{
		WorkflowID:   rule.ID,
		TriggerEvent: rule.Event,
		Variables:    variables,
	}

	for i, action := range rule.Actions {
		outcome := ActionOutcome{Type: action.Type}

		if !actionTypes[action.Type] {
			outcome.Error = fmt.Sprintf("node type %s cannot be used as a rule action", action.Type)
			results = append(results, outcome)

			e.logger.Warn("Rule action rejected",
				"rule_id", rule.ID, "action_type", action.Type, "error", outcome.Error)

			continue
		}

		node := &models.WorkflowNode{
			ID:   fmt.Sprintf("%s/action-%d", rule.ID, i),
			Type: action.Type,
			Data: action.Config,
		}

		executor, err := e.registry.CreateExecutor(node)
		if err != nil {
			outcome.Error = err.Error()
			results = append(results, outcome)

			e.logger.Warn("Rule action rejected",
				"rule_id", rule.ID, "action_type", action.Type, "error", err)

			continue
		}

		result := executor.Execute(ctx, nil, executionCtx)

		outcome.Success = result.Success
		outcome.Error = result.Error
		results = append(results, outcome)

		if !result.Success {
			e.logger.Warn("Rule action failed",
				"rule_id", rule.ID, "action_type", action.Type, "error", result.Error)
		}
	}

	return results
}

func conditionsPass(rule *models.AutomationRule, variables map[string]any) bool {
	if len(rule.Conditions) == 0 {
		return true
	}

	predicates := make([]conditions.Condition, 0, len(rule.Conditions))
	for _, c := range rule.Conditions {
		predicates = append(predicates, conditions.Condition{
			Field:    c.Field,
			Operator: c.Operator,
			Value:    c.Value,
		})
	}

	return conditions.All(predicates, variables)
}

// composeVariables mirrors the dispatcher's payload composition: entity
// identity first, payload nested under the entity type, raw payload spread
// last so its own keys win.
func composeVariables(event, entityType, entityID string, payload map[string]any) map[string]any {
	variables := make(map[string]any, len(payload)+4)

	variables["event"] = event
	variables["entity_type"] = entityType
	variables["entity_id"] = entityID

	if entityType != "" {
		variables[entityType] = payload
	}

	for key, value := range payload {
		variables[key] = value
	}

	return variables
}
