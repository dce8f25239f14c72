package dispatcher

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funilhq/funil/pkg/engine"
	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/registry"
	"github.com/funilhq/funil/pkg/rules"
	"github.com/funilhq/funil/pkg/storage"
	"github.com/funilhq/funil/pkg/storage/memory"
	"github.com/funilhq/funil/pkg/testutil"
)

type harness struct {
	dispatcher  *Dispatcher
	definitions *storage.Definitions
	executions  *storage.Executions
	rules       *storage.Rules
	emails      *testutil.EmailRecorder
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

	definitions := storage.NewDefinitions(store)
	executions := storage.NewExecutions(store)
	ruleRepo := storage.NewRules(store)
	eng := engine.NewEngine(slog.Default(), reg, executions)
	ruleEngine := rules.NewEngine(slog.Default(), ruleRepo, reg)

	return &harness{
		dispatcher:  NewDispatcher(slog.Default(), definitions, eng).WithRules(ruleEngine),
		definitions: definitions,
		executions:  executions,
		rules:       ruleRepo,
		emails:      emails,
	}
}

func (h *harness) saveDefinition(t *testing.T, def *models.WorkflowDefinition) {
	t.Helper()

	require.NoError(t, h.definitions.Save(context.Background(), def))
}

func emailFlow(subject string) *models.Flow {
	return testutil.LinearFlow(testutil.CreateTestNode(
		testutil.WithID("2"),
		testutil.WithData(map[string]any{"to": "crm@example.com", "subject": subject}),
	))
}

func TestDispatcher_RunsOnlyMatchingDefinitions(t *testing.T) {
	h := newHarness()

	h.saveDefinition(t, testutil.CreateTestDefinition("lead_created", emailFlow("one")))
	h.saveDefinition(t, testutil.CreateTestDefinition("lead_created", emailFlow("two")))
	h.saveDefinition(t, testutil.CreateTestDefinition("deal_won", emailFlow("other")))

	results, err := h.dispatcher.Dispatch(context.Background(),
		"lead_created", "lead", "L1", map[string]any{"name": "Dana"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, result := range results {
		assert.True(t, result.Success)
	}

	executions, err := h.executions.List(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, executions, 2)

	assert.Len(t, h.emails.Sent(), 2)
}

func TestDispatcher_SkipsInactiveDefinitions(t *testing.T) {
	h := newHarness()

	active := testutil.CreateTestDefinition("lead_created", emailFlow("active"))
	inactive := testutil.CreateTestDefinition("lead_created", emailFlow("inactive"))
	inactive.IsActive = false

	h.saveDefinition(t, active)
	h.saveDefinition(t, inactive)

	results, err := h.dispatcher.Dispatch(context.Background(),
		"lead_created", "lead", "L1", map[string]any{})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestDispatcher_TriggerConditionsGateTheRun(t *testing.T) {
	h := newHarness()

	def := testutil.CreateTestDefinition("deal_won", emailFlow("big deal"))
	def.TriggerConfig.Conditions = []models.TriggerCondition{
		{Field: "deal.value", Operator: "greater_than", Value: float64(10000)},
	}
	h.saveDefinition(t, def)

	results, err := h.dispatcher.Dispatch(context.Background(),
		"deal_won", "deal", "D1", map[string]any{"value": float64(500)})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = h.dispatcher.Dispatch(context.Background(),
		"deal_won", "deal", "D2", map[string]any{"value": float64(50000)})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestDispatcher_FailingDefinitionDoesNotAffectOthers(t *testing.T) {
	h := newHarness()

	broken := testutil.CreateTestDefinition("lead_created", &models.Flow{
		Nodes: []*models.WorkflowNode{
			{ID: "1", Type: models.NodeTypeTrigger, Data: map[string]any{}},
			{ID: "2", Type: models.NodeTypeSendEmail, Data: map[string]any{"subject": "no recipient"}},
		},
		Edges: []*models.WorkflowEdge{{Source: "1", Target: "2"}},
	})
	healthy := testutil.CreateTestDefinition("lead_created", emailFlow("still works"))

	h.saveDefinition(t, broken)
	h.saveDefinition(t, healthy)

	results, err := h.dispatcher.Dispatch(context.Background(),
		"lead_created", "lead", "L1", map[string]any{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	succeeded := 0
	for _, result := range results {
		if result.Success {
			succeeded++
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Len(t, h.emails.Sent(), 1)

	executions, err := h.executions.List(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, executions, 2)
}

func TestDispatcher_PayloadKeysWinOverComposedEntityFields(t *testing.T) {
	h := newHarness()

	def := testutil.CreateTestDefinition("lead_created", emailFlow("type: {{entity_type}}"))
	h.saveDefinition(t, def)

	results, err := h.dispatcher.Dispatch(context.Background(),
		"lead_created", "lead", "L1", map[string]any{"entity_type": "vip_lead"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Success)

	sent := h.emails.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "type: vip_lead", sent[0].Subject)
}

func TestDispatcher_AppliesAutomationRules(t *testing.T) {
	h := newHarness()

	h.saveDefinition(t, testutil.CreateTestDefinition("deal_won", emailFlow("workflow mail")))

	require.NoError(t, h.rules.Save(context.Background(), &models.AutomationRule{
		Name:     "Congratulate the owner",
		Event:    "deal_won",
		IsActive: true,
		Actions: []models.RuleAction{
			{Type: models.NodeTypeSendEmail, Config: map[string]any{
				"to": "owner@example.com", "subject": "Deal {{deal.name}} closed",
			}},
		},
	}))

	results, err := h.dispatcher.Dispatch(context.Background(),
		"deal_won", "deal", "D1", map[string]any{"name": "Initech"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	sent := h.emails.Sent()
	require.Len(t, sent, 2)

	subjects := []string{sent[0].Subject, sent[1].Subject}
	assert.Contains(t, subjects, "workflow mail")
	assert.Contains(t, subjects, "Deal Initech closed")
}

func TestDispatcher_ComposedPayloadNestsEntity(t *testing.T) {
	h := newHarness()

	def := testutil.CreateTestDefinition("lead_created", emailFlow("Hello {{lead.name}}"))
	h.saveDefinition(t, def)

	results, err := h.dispatcher.Dispatch(context.Background(),
		"lead_created", "lead", "L1", map[string]any{"name": "Dana"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Success)

	sent := h.emails.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Hello Dana", sent[0].Subject)
}
