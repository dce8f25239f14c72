package services

import (
	"context"
	"time"

	"github.com/funilhq/funil/pkg/engine"
	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/storage"
)

// ErrExecutionNotFound is returned when an execution id resolves to nothing.
var ErrExecutionNotFound = storage.ErrExecutionNotFound

// Execution exposes run management: manual runs, inspection, cancellation
// and retry-as-rerun.
type Execution struct {
	definitions *storage.Definitions
	executions  *storage.Executions
	engine      *engine.Engine
}

func NewExecution(store storage.RecordStore, eng *engine.Engine) *Execution {
	return &Execution{
		definitions: storage.NewDefinitions(store),
		executions:  storage.NewExecutions(store),
		engine:      eng,
	}
}

// List returns execution records, optionally scoped to one workflow.
func (e *Execution) List(ctx context.Context, workflowID string, limit int) ([]*models.WorkflowExecution, error) {
	return e.executions.List(ctx, workflowID, limit)
}

// Get returns one execution record.
func (e *Execution) Get(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	return e.executions.ByID(ctx, id)
}

// Run starts one run of the workflow with the given payload. The trigger
// event is recorded as "manual" unless the caller names one.
func (e *Execution) Run(ctx context.Context, workflowID, triggerEvent string, payload map[string]any) (*engine.RunResult, error) {
	def, err := e.definitions.ByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if !def.IsActive {
		return nil, ErrInactiveWorkflow
	}

	if triggerEvent == "" {
		triggerEvent = "manual"
	}

	if payload == nil {
		payload = map[string]any{}
	}

	return e.engine.RunOnce(ctx, def, triggerEvent, payload)
}

// Cancel flips a non-terminal execution to cancelled. The flag is advisory:
// an in-flight walk finishes its current node and checks the context, not
// the stored status.
func (e *Execution) Cancel(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	execution, err := e.executions.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if execution.Status.Terminal() {
		return nil, ErrExecutionTerminal
	}

	execution.Status = models.ExecutionStatusCancelled
	execution.FinishedAt = time.Now().UTC()
	execution.DurationMs = execution.FinishedAt.Sub(execution.StartedAt).Milliseconds()

	if err := e.executions.Save(ctx, execution); err != nil {
		return nil, NewServiceError("cancel execution", err)
	}

	return execution, nil
}

// Retry starts a new run with the stored trigger event and payload. The
// original record is untouched; the new one carries an incremented retry
// count. Cancelled executions refuse retry.
func (e *Execution) Retry(ctx context.Context, id string) (*engine.RunResult, error) {
	execution, err := e.executions.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if execution.Status == models.ExecutionStatusCancelled {
		return nil, ErrRetryCancelled
	}

	if !execution.Status.Terminal() {
		return nil, ErrExecutionRunning
	}

	def, err := e.definitions.ByID(ctx, execution.WorkflowID)
	if err != nil {
		return nil, err
	}

	result, err := e.engine.RunOnce(ctx, def, execution.TriggerEvent, execution.TriggerPayload)
	if err != nil {
		return nil, err
	}

	rerun, err := e.executions.ByID(ctx, result.ExecutionID)
	if err != nil {
		return nil, err
	}

	rerun.RetryCount = execution.RetryCount + 1
	if err := e.executions.Save(ctx, rerun); err != nil {
		return nil, NewServiceError("record retry count", err)
	}

	return result, nil
}
