package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/funilhq/funil/pkg/models"
	"github.com/google/uuid"
)

// Definitions is the typed view over the workflow_definitions table.
type Definitions struct {
	store RecordStore
}

func NewDefinitions(store RecordStore) *Definitions {
	return &Definitions{store: store}
}

// Save inserts the definition, or replaces it when the id already exists.
func (d *Definitions) Save(ctx context.Context, def *models.WorkflowDefinition) error {
	if def.ID == "" {
		def.ID = uuid.New().String()
		def.CreatedAt = time.Now().UTC()
	}

	def.UpdatedAt = time.Now().UTC()

	row, err := toRow(def)
	if err != nil {
		return NewStoreError("Save", TableWorkflowDefinitions, err)
	}

	existing, err := d.store.Select(ctx, TableWorkflowDefinitions, Where("id", def.ID))
	if err != nil {
		return err
	}

	if len(existing) > 0 {
		return d.store.Update(ctx, TableWorkflowDefinitions, row, Where("id", def.ID))
	}

	_, err = d.store.Insert(ctx, TableWorkflowDefinitions, row)

	return err
}

// ByID fetches a single definition.
func (d *Definitions) ByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	rows, err := d.store.Select(ctx, TableWorkflowDefinitions, Where("id", id))
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrDefinitionNotFound
	}

	var def models.WorkflowDefinition
	if err := fromRow(rows[0], &def); err != nil {
		return nil, NewStoreError("ByID", TableWorkflowDefinitions, err)
	}

	return &def, nil
}

// List returns every stored definition.
func (d *Definitions) List(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	rows, err := d.store.Select(ctx, TableWorkflowDefinitions, Filter{})
	if err != nil {
		return nil, err
	}

	return decodeDefinitions(rows)
}

// ActiveByTrigger returns every active definition with the given trigger type.
func (d *Definitions) ActiveByTrigger(ctx context.Context, triggerType models.TriggerType) ([]*models.WorkflowDefinition, error) {
	filter := Where("is_active", true).And("trigger_type", OpEquals, string(triggerType))

	rows, err := d.store.Select(ctx, TableWorkflowDefinitions, filter)
	if err != nil {
		return nil, err
	}

	return decodeDefinitions(rows)
}

func decodeDefinitions(rows []map[string]any) ([]*models.WorkflowDefinition, error) {
	defs := make([]*models.WorkflowDefinition, 0, len(rows))

	for _, row := range rows {
		var def models.WorkflowDefinition
		if err := fromRow(row, &def); err != nil {
			return nil, NewStoreError("decode", TableWorkflowDefinitions, err)
		}

		defs = append(defs, &def)
	}

	return defs, nil
}

// Executions is the typed view over the workflow_executions table.
type Executions struct {
	store RecordStore
}

func NewExecutions(store RecordStore) *Executions {
	return &Executions{store: store}
}

// Create persists a new execution record.
func (e *Executions) Create(ctx context.Context, exec *models.WorkflowExecution) error {
	row, err := toRow(exec)
	if err != nil {
		return NewStoreError("Create", TableWorkflowExecutions, err)
	}

	_, err = e.store.Insert(ctx, TableWorkflowExecutions, row)

	return err
}

// Save replaces the stored record with the current state of exec.
func (e *Executions) Save(ctx context.Context, exec *models.WorkflowExecution) error {
	row, err := toRow(exec)
	if err != nil {
		return NewStoreError("Save", TableWorkflowExecutions, err)
	}

	return e.store.Update(ctx, TableWorkflowExecutions, row, Where("id", exec.ID))
}

// ByID fetches a single execution record.
func (e *Executions) ByID(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	rows, err := e.store.Select(ctx, TableWorkflowExecutions, Where("id", id))
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrExecutionNotFound
	}

	var exec models.WorkflowExecution
	if err := fromRow(rows[0], &exec); err != nil {
		return nil, NewStoreError("ByID", TableWorkflowExecutions, err)
	}

	return &exec, nil
}

// List returns up to limit execution records, optionally scoped to one workflow.
func (e *Executions) List(ctx context.Context, workflowID string, limit int) ([]*models.WorkflowExecution, error) {
	filter := Filter{Limit: limit}
	if workflowID != "" {
		filter = Where("workflow_id", workflowID).WithLimit(limit)
	}

	rows, err := e.store.Select(ctx, TableWorkflowExecutions, filter)
	if err != nil {
		return nil, err
	}

	execs := make([]*models.WorkflowExecution, 0, len(rows))

	for _, row := range rows {
		var exec models.WorkflowExecution
		if err := fromRow(row, &exec); err != nil {
			return nil, NewStoreError("List", TableWorkflowExecutions, err)
		}

		execs = append(execs, &exec)
	}

	return execs, nil
}

// Rules is the typed view over the automation_rules table.
type Rules struct {
	store RecordStore
}

func NewRules(store RecordStore) *Rules {
	return &Rules{store: store}
}

// Save inserts the rule, or replaces it when the id already exists.
func (r *Rules) Save(ctx context.Context, rule *models.AutomationRule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
		rule.CreatedAt = time.Now().UTC()
	}

	rule.UpdatedAt = time.Now().UTC()

	row, err := toRow(rule)
	if err != nil {
		return NewStoreError("Save", TableAutomationRules, err)
	}

	existing, err := r.store.Select(ctx, TableAutomationRules, Where("id", rule.ID))
	if err != nil {
		return err
	}

	if len(existing) > 0 {
		return r.store.Update(ctx, TableAutomationRules, row, Where("id", rule.ID))
	}

	_, err = r.store.Insert(ctx, TableAutomationRules, row)

	return err
}

// ActiveByEvent returns every active rule bound to the event.
func (r *Rules) ActiveByEvent(ctx context.Context, event string) ([]*models.AutomationRule, error) {
	filter := Where("is_active", true).And("event", OpEquals, event)

	rows, err := r.store.Select(ctx, TableAutomationRules, filter)
	if err != nil {
		return nil, err
	}

	rules := make([]*models.AutomationRule, 0, len(rows))

	for _, row := range rows {
		var rule models.AutomationRule
		if err := fromRow(row, &rule); err != nil {
			return nil, NewStoreError("ActiveByEvent", TableAutomationRules, err)
		}

		rules = append(rules, &rule)
	}

	return rules, nil
}

// toRow converts a model to its schemaless row form via JSON.
func toRow(v any) (map[string]any, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}

	var row map[string]any
	if err := json.Unmarshal(encoded, &row); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}

	return row, nil
}

func fromRow(row map[string]any, target any) error {
	encoded, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}

	if err := json.Unmarshal(encoded, target); err != nil {
		return fmt.Errorf("decode row: %w", err)
	}

	return nil
}
