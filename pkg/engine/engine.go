// Package engine runs workflow definitions: it walks the flow graph
// breadth-first from the trigger nodes, executes each node once and records
// an execution trail that survives the run.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/funilhq/funil/pkg/eventbus"
	"github.com/funilhq/funil/pkg/events"
	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/otelhelper"
	"github.com/funilhq/funil/pkg/registry"
	"github.com/funilhq/funil/pkg/storage"
)

// RunResult is the condensed outcome of one workflow run.
type RunResult struct {
	Success     bool   `json:"success"`
	ExecutionID string `json:"execution_id"`
	Error       string `json:"error,omitempty"`
}

// Engine coordinates workflow runs. Safe for concurrent use: each run owns
// its execution context and record.
type Engine struct {
	logger     *slog.Logger
	registry   *registry.Registry
	executions *storage.Executions
	bus        eventbus.EventBus
	tracer     trace.Tracer
}

func NewEngine(logger *slog.Logger, reg *registry.Registry, executions *storage.Executions) *Engine {
	return &Engine{
		logger:     logger.With("module", "engine"),
		registry:   reg,
		executions: executions,
	}
}

// WithEventBus makes the engine publish execution lifecycle events.
func (e *Engine) WithEventBus(bus eventbus.EventBus) *Engine {
	e.bus = bus

	return e
}

// WithTracer makes the engine emit spans for runs and node executions.
func (e *Engine) WithTracer(tracer trace.Tracer) *Engine {
	e.tracer = tracer

	return e
}

// RunOnce executes the definition once for the given trigger event. The
// returned error covers infrastructure failures only; a workflow that ran
// and failed comes back as a RunResult with Success false.
func (e *Engine) RunOnce(
	ctx context.Context,
	def *models.WorkflowDefinition,
	triggerEvent string,
	payload map[string]any,
) (*RunResult, error) {
	execution := newExecution(def, triggerEvent, payload)

	logger := e.logger.With(
		"workflow_id", def.ID,
		"execution_id", execution.ID,
		"trigger_event", triggerEvent)

	if e.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, e.tracer, "workflow.run",
			attribute.String(otelhelper.WorkflowIDKey, def.ID),
			attribute.String(otelhelper.WorkflowNameKey, def.Name),
			attribute.String(otelhelper.ExecutionIDKey, execution.ID),
			attribute.String(otelhelper.TriggerEventKey, triggerEvent),
		)
		defer span.End()
	}

	if err := e.executions.Create(ctx, execution); err != nil {
		return nil, fmt.Errorf("failed to create execution record: %w", err)
	}

	logger.Info("Starting workflow run")
	e.publish(ctx, events.WorkflowExecutionStarted{
		BaseEvent:    events.NewBaseEvent(events.WorkflowExecutionStartedEvent, def.ID),
		ExecutionID:  execution.ID,
		TriggerEvent: triggerEvent,
	})

	executionCtx := &models.ExecutionContext{
		WorkflowID:     def.ID,
		ExecutionID:    execution.ID,
		TriggerEvent:   triggerEvent,
		TriggerPayload: payload,
		Variables:      seedVariables(def, payload),
		StartedAt:      execution.StartedAt,
	}

	runErr := e.walk(ctx, def, execution, executionCtx)

	return e.finalize(ctx, logger, def, execution, runErr)
}

// walk drives the breadth-first traversal. Each node executes at most once
// per run, which makes authored cycles terminate.
func (e *Engine) walk(
	ctx context.Context,
	def *models.WorkflowDefinition,
	execution *models.WorkflowExecution,
	executionCtx *models.ExecutionContext,
) error {
	flow := &def.Flow

	frontier := startNodes(flow)
	if len(frontier) == 0 {
		return fmt.Errorf("no nodes in workflow")
	}

	visited := make(map[string]bool)

	for len(frontier) > 0 {
		nodeID := frontier[0]
		frontier = frontier[1:]

		if visited[nodeID] {
			continue
		}

		visited[nodeID] = true

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run aborted: %w", err)
		}

		node, ok := flow.NodeByID(nodeID)
		if !ok {
			e.logger.Warn("Edge points to missing node", "node_id", nodeID)

			continue
		}

		executionCtx.CurrentNodeID = node.ID
		execution.CurrentStepID = node.ID

		startedAt := time.Now().UTC()
		result := e.executeNode(ctx, flow, node, executionCtx)

		step := recordStep(node, result, startedAt)
		executionCtx.AppendStep(step)
		execution.StepsExecuted = executionCtx.Steps

		if err := e.executions.Save(ctx, execution); err != nil {
			return fmt.Errorf("failed to persist execution progress: %w", err)
		}

		if !result.Success {
			if errorPolicy(def) == models.ErrorHandlingStop {
				return fmt.Errorf("node %s failed: %s", node.ID, result.Error)
			}

			e.logger.Warn("Node failed, continuing per error policy",
				"node_id", node.ID, "error", result.Error)
		}

		frontier = append(frontier, nextNodes(flow, node.ID, result)...)
	}

	return nil
}

// executeNode resolves the node's executor and runs it. Factory and
// validation errors become failed node results, not run aborts, so the
// definition's error policy governs them too.
func (e *Engine) executeNode(
	ctx context.Context,
	flow *models.Flow,
	node *models.WorkflowNode,
	executionCtx *models.ExecutionContext,
) *models.NodeResult {
	if e.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, e.tracer, "workflow.node",
			attribute.String(otelhelper.NodeIDKey, node.ID),
			attribute.String(otelhelper.NodeTypeKey, string(node.Type)),
			attribute.String(otelhelper.ExecutionIDKey, executionCtx.ExecutionID),
		)
		defer span.End()
	}

	executor, err := e.registry.CreateExecutor(node)
	if err != nil {
		return &models.NodeResult{
			Success: false,
			Error:   err.Error(),
		}
	}

	return executor.Execute(ctx, flow, executionCtx)
}

func (e *Engine) finalize(
	ctx context.Context,
	logger *slog.Logger,
	def *models.WorkflowDefinition,
	execution *models.WorkflowExecution,
	runErr error,
) (*RunResult, error) {
	execution.FinishedAt = time.Now().UTC()
	execution.DurationMs = execution.FinishedAt.Sub(execution.StartedAt).Milliseconds()

	if runErr != nil {
		execution.Status = models.ExecutionStatusFailed
		execution.ErrorMessage = runErr.Error()
	} else {
		execution.Status = models.ExecutionStatusCompleted
	}

	if err := e.executions.Save(ctx, execution); err != nil {
		return nil, fmt.Errorf("failed to finalize execution: %w", err)
	}

	duration := time.Duration(execution.DurationMs) * time.Millisecond

	if runErr != nil {
		logger.Warn("Workflow run failed",
			"error", execution.ErrorMessage, "duration_ms", execution.DurationMs)
		e.publish(ctx, events.WorkflowExecutionFailed{
			BaseEvent:   events.NewBaseEvent(events.WorkflowExecutionFailedEvent, def.ID),
			ExecutionID: execution.ID,
			Error:       execution.ErrorMessage,
			Duration:    duration,
		})

		return &RunResult{
			Success:     false,
			ExecutionID: execution.ID,
			Error:       execution.ErrorMessage,
		}, nil
	}

	logger.Info("Workflow run completed",
		"steps", len(execution.StepsExecuted), "duration_ms", execution.DurationMs)
	e.publish(ctx, events.WorkflowExecutionCompleted{
		BaseEvent:   events.NewBaseEvent(events.WorkflowExecutionCompletedEvent, def.ID),
		ExecutionID: execution.ID,
		Duration:    duration,
	})

	return &RunResult{Success: true, ExecutionID: execution.ID}, nil
}

func (e *Engine) publish(ctx context.Context, event eventbus.Event) {
	if e.bus == nil {
		return
	}

	if err := e.bus.Publish(ctx, e.bus.GenerateID(), event); err != nil {
		e.logger.Warn("Failed to publish execution event",
			"event_type", event.GetType(), "error", err)
	}
}

func newExecution(def *models.WorkflowDefinition, triggerEvent string, payload map[string]any) *models.WorkflowExecution {
	entityType, _ := payload["entity_type"].(string)
	entityID, _ := payload["entity_id"].(string)

	return &models.WorkflowExecution{
		ID:             uuid.New().String(),
		WorkflowID:     def.ID,
		TriggerEvent:   triggerEvent,
		TriggerPayload: payload,
		EntityType:     entityType,
		EntityID:       entityID,
		Status:         models.ExecutionStatusRunning,
		StartedAt:      time.Now().UTC(),
	}
}

// seedVariables builds the run's variable scope: the trigger payload,
// flattened entity identity and a "system" namespace with run metadata.
func seedVariables(def *models.WorkflowDefinition, payload map[string]any) map[string]any {
	variables := make(map[string]any, len(payload)+3)

	for key, value := range payload {
		variables[key] = value
	}

	now := time.Now().UTC()
	variables["system"] = map[string]any{
		"date":          now.Format("2006-01-02"),
		"time":          now.Format("15:04:05"),
		"datetime":      now.Format(time.RFC3339),
		"workflow_name": def.Name,
	}

	return variables
}

func recordStep(node *models.WorkflowNode, result *models.NodeResult, startedAt time.Time) models.ExecutionStep {
	finishedAt := time.Now().UTC()

	status := models.StepStatusCompleted
	if !result.Success {
		status = models.StepStatusFailed
	}

	return models.ExecutionStep{
		NodeID:     node.ID,
		NodeType:   node.Type,
		Status:     status,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		DurationMs: finishedAt.Sub(startedAt).Milliseconds(),
		Output:     result.Output,
		Error:      result.Error,
	}
}

func errorPolicy(def *models.WorkflowDefinition) models.ErrorHandling {
	if def.ErrorHandling == "" {
		return models.ErrorHandlingStop
	}

	return def.ErrorHandling
}
