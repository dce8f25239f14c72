package engine

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/registry"
	"github.com/funilhq/funil/pkg/storage"
	"github.com/funilhq/funil/pkg/storage/memory"
	"github.com/funilhq/funil/pkg/testutil"
)

type harness struct {
	engine     *Engine
	store      *memory.Store
	executions *storage.Executions
	emails     *testutil.EmailRecorder
}

func newHarness() *harness {
	store := memory.NewStore()
	emails := testutil.NewEmailRecorder()

	reg := registry.NewDefaultRegistry(registry.Deps{
		Logger:     slog.Default(),
		Store:      store,
		Email:      emails,
		Notifier:   testutil.NewNotificationRecorder(),
		MaxDelay:   50 * time.Millisecond,
		FetchLimit: 100,
	})

	executions := storage.NewExecutions(store)

	return &harness{
		engine:     NewEngine(slog.Default(), reg, executions),
		store:      store,
		executions: executions,
		emails:     emails,
	}
}

func stepNodeIDs(steps []models.ExecutionStep) []string {
	ids := make([]string, 0, len(steps))
	for _, step := range steps {
		ids = append(ids, step.NodeID)
	}

	return ids
}

func TestEngine_LinearFlowResolvesPlaceholders(t *testing.T) {
	h := newHarness()

	def := testutil.CreateTestDefinition("lead_created", testutil.LinearFlow(
		testutil.CreateTestNode(
			testutil.WithID("2"),
			testutil.WithData(map[string]any{
				"to":      "{{email}}",
				"subject": "Hi {{name}}",
			}),
		),
	))

	result, err := h.engine.RunOnce(context.Background(), def, "lead_created", map[string]any{
		"name":  "Dana",
		"email": "dana@example.com",
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	sent := h.emails.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Hi Dana", sent[0].Subject)
	assert.Equal(t, "dana@example.com", sent[0].To)

	execution, err := h.executions.ByID(context.Background(), result.ExecutionID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	require.Len(t, execution.StepsExecuted, 2)
	assert.Equal(t, models.StepStatusCompleted, execution.StepsExecuted[1].Status)
}

func conditionBranchDefinition() *models.WorkflowDefinition {
	flow := &models.Flow{
		Nodes: []*models.WorkflowNode{
			{ID: "1", Type: models.NodeTypeTrigger, Data: map[string]any{}},
			{ID: "2", Type: models.NodeTypeCondition, Data: map[string]any{
				"field": "score", "operator": "greater_than", "value": float64(50),
			}},
			{ID: "3", Type: models.NodeTypeCreateTask, Data: map[string]any{"title": "Qualify lead"}},
			{ID: "4", Type: models.NodeTypeSendEmail, Data: map[string]any{
				"to": "sales@example.com", "subject": "Low score",
			}},
		},
		Edges: []*models.WorkflowEdge{
			{Source: "1", Target: "2"},
			{Source: "2", Target: "3", SourceHandle: models.BranchTrue},
			{Source: "2", Target: "4", SourceHandle: models.BranchFalse},
		},
	}

	return testutil.CreateTestDefinition("lead_created", flow)
}

func TestEngine_ConditionRoutesTrueBranchOnly(t *testing.T) {
	h := newHarness()

	result, err := h.engine.RunOnce(context.Background(), conditionBranchDefinition(),
		"lead_created", map[string]any{"score": float64(80)})
	require.NoError(t, err)
	require.True(t, result.Success)

	execution, err := h.executions.ByID(context.Background(), result.ExecutionID)
	require.NoError(t, err)

	ids := stepNodeIDs(execution.StepsExecuted)
	assert.Contains(t, ids, "3")
	assert.NotContains(t, ids, "4")

	assert.Empty(t, h.emails.Sent())

	tasks, err := h.store.Select(context.Background(), storage.TableTasks, storage.Filter{})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestEngine_ConditionRoutesFalseBranchOnly(t *testing.T) {
	h := newHarness()

	result, err := h.engine.RunOnce(context.Background(), conditionBranchDefinition(),
		"lead_created", map[string]any{"score": float64(10)})
	require.NoError(t, err)
	require.True(t, result.Success)

	execution, err := h.executions.ByID(context.Background(), result.ExecutionID)
	require.NoError(t, err)

	ids := stepNodeIDs(execution.StepsExecuted)
	assert.Contains(t, ids, "4")
	assert.NotContains(t, ids, "3")

	assert.Len(t, h.emails.Sent(), 1)
}

func failingFlowDefinition(policy models.ErrorHandling) *models.WorkflowDefinition {
	flow := &models.Flow{
		Nodes: []*models.WorkflowNode{
			{ID: "1", Type: models.NodeTypeTrigger, Data: map[string]any{}},
			// Missing "to": the node's config schema rejects it.
			{ID: "2", Type: models.NodeTypeSendEmail, Data: map[string]any{"subject": "hi"}},
			{ID: "3", Type: models.NodeTypeCreateTask, Data: map[string]any{"title": "after failure"}},
		},
		Edges: []*models.WorkflowEdge{
			{Source: "1", Target: "2"},
			{Source: "2", Target: "3"},
		},
	}

	def := testutil.CreateTestDefinition("lead_created", flow)
	def.ErrorHandling = policy

	return def
}

func TestEngine_StopPolicyHaltsRun(t *testing.T) {
	h := newHarness()

	result, err := h.engine.RunOnce(context.Background(),
		failingFlowDefinition(models.ErrorHandlingStop), "lead_created", map[string]any{})
	require.NoError(t, err)
	require.False(t, result.Success)
	assert.NotEmpty(t, result.Error)

	execution, err := h.executions.ByID(context.Background(), result.ExecutionID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusFailed, execution.Status)
	assert.NotEmpty(t, execution.ErrorMessage)

	ids := stepNodeIDs(execution.StepsExecuted)
	assert.NotContains(t, ids, "3")

	require.Len(t, execution.StepsExecuted, 2)
	assert.Equal(t, models.StepStatusFailed, execution.StepsExecuted[1].Status)
}

func TestEngine_ContinuePolicyRunsDownstreamNodes(t *testing.T) {
	h := newHarness()

	result, err := h.engine.RunOnce(context.Background(),
		failingFlowDefinition(models.ErrorHandlingContinue), "lead_created", map[string]any{})
	require.NoError(t, err)
	require.True(t, result.Success)

	execution, err := h.executions.ByID(context.Background(), result.ExecutionID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)

	ids := stepNodeIDs(execution.StepsExecuted)
	assert.Contains(t, ids, "3")

	assert.Equal(t, models.StepStatusFailed, execution.StepsExecuted[1].Status)
	assert.Equal(t, models.StepStatusCompleted, execution.StepsExecuted[2].Status)
}

func TestEngine_EmptyFlowFails(t *testing.T) {
	h := newHarness()

	def := testutil.CreateTestDefinition("lead_created", &models.Flow{})

	result, err := h.engine.RunOnce(context.Background(), def, "lead_created", map[string]any{})
	require.NoError(t, err)
	require.False(t, result.Success)
	assert.Contains(t, result.Error, "no nodes in workflow")

	execution, err := h.executions.ByID(context.Background(), result.ExecutionID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusFailed, execution.Status)
}

func TestEngine_CyclicFlowTerminates(t *testing.T) {
	h := newHarness()

	flow := &models.Flow{
		Nodes: []*models.WorkflowNode{
			{ID: "1", Type: models.NodeTypeTrigger, Data: map[string]any{}},
			{ID: "2", Type: models.NodeTypeCreateTask, Data: map[string]any{"title": "once"}},
		},
		Edges: []*models.WorkflowEdge{
			{Source: "1", Target: "2"},
			{Source: "2", Target: "1"}, // loop-back edge
		},
	}

	result, err := h.engine.RunOnce(context.Background(),
		testutil.CreateTestDefinition("lead_created", flow), "lead_created", map[string]any{})
	require.NoError(t, err)
	require.True(t, result.Success)

	execution, err := h.executions.ByID(context.Background(), result.ExecutionID)
	require.NoError(t, err)
	assert.Len(t, execution.StepsExecuted, 2)

	tasks, err := h.store.Select(context.Background(), storage.TableTasks, storage.Filter{})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestEngine_UnknownNodeTypeIsSkipped(t *testing.T) {
	h := newHarness()

	flow := &models.Flow{
		Nodes: []*models.WorkflowNode{
			{ID: "1", Type: models.NodeTypeTrigger, Data: map[string]any{}},
			{ID: "2", Type: models.NodeType("ai_scoring"), Data: map[string]any{}},
			{ID: "3", Type: models.NodeTypeCreateTask, Data: map[string]any{"title": "still runs"}},
		},
		Edges: []*models.WorkflowEdge{
			{Source: "1", Target: "2"},
			{Source: "2", Target: "3"},
		},
	}

	result, err := h.engine.RunOnce(context.Background(),
		testutil.CreateTestDefinition("lead_created", flow), "lead_created", map[string]any{})
	require.NoError(t, err)
	require.True(t, result.Success)

	execution, err := h.executions.ByID(context.Background(), result.ExecutionID)
	require.NoError(t, err)
	require.Len(t, execution.StepsExecuted, 3)
	assert.Equal(t, models.StepStatusCompleted, execution.StepsExecuted[1].Status)
	assert.Equal(t, true, execution.StepsExecuted[1].Output["skipped"])
}

func TestEngine_SeedsSystemVariables(t *testing.T) {
	h := newHarness()

	def := testutil.CreateTestDefinition("lead_created", testutil.LinearFlow(
		testutil.CreateTestNode(
			testutil.WithID("2"),
			testutil.WithData(map[string]any{
				"to":      "audit@example.com",
				"subject": "{{system.workflow_name}} on {{system.date}}",
			}),
		),
	))
	def.Name = "Audit Trail"

	result, err := h.engine.RunOnce(context.Background(), def, "lead_created", map[string]any{})
	require.NoError(t, err)
	require.True(t, result.Success)

	sent := h.emails.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Subject, "Audit Trail on ")
	assert.NotContains(t, sent[0].Subject, "{{")
}

func TestEngine_RecordsEntityScope(t *testing.T) {
	h := newHarness()

	def := testutil.CreateTestDefinition("deal_won", testutil.LinearFlow())

	result, err := h.engine.RunOnce(context.Background(), def, "deal_won", map[string]any{
		"entity_type": "deal",
		"entity_id":   "D-7",
	})
	require.NoError(t, err)

	execution, err := h.executions.ByID(context.Background(), result.ExecutionID)
	require.NoError(t, err)
	assert.Equal(t, "deal", execution.EntityType)
	assert.Equal(t, "D-7", execution.EntityID)
	assert.Equal(t, "deal_won", execution.TriggerEvent)
}
