package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/registry"
	"github.com/funilhq/funil/pkg/storage"
)

// ErrWorkflowNotFound is returned when a definition id resolves to nothing.
var ErrWorkflowNotFound = storage.ErrDefinitionNotFound

// Workflow manages workflow definitions: validation, persistence, lookup.
type Workflow struct {
	definitions *storage.Definitions
	registry    *registry.Registry
	store       storage.RecordStore
	validate    *validator.Validate
}

func NewWorkflow(store storage.RecordStore, reg *registry.Registry) *Workflow {
	return &Workflow{
		definitions: storage.NewDefinitions(store),
		registry:    reg,
		store:       store,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HealthCheck reports whether the storage layer is reachable.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if err := w.store.HealthCheck(ctx); err != nil {
		return "Storage layer is unhealthy: " + err.Error(), false
	}

	return "Storage layer is healthy", true
}

// List returns every stored definition.
func (w *Workflow) List(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	return w.definitions.List(ctx)
}

// Get returns one definition by id.
func (w *Workflow) Get(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	return w.definitions.ByID(ctx, id)
}

// Save validates and persists a definition, assigning an id on first save.
func (w *Workflow) Save(ctx context.Context, def *models.WorkflowDefinition) error {
	if err := w.Validate(def); err != nil {
		return err
	}

	if err := w.definitions.Save(ctx, def); err != nil {
		return NewServiceError("save workflow", err)
	}

	return nil
}

// Validate runs struct-tag validation, structural flow checks and per-node
// config schema validation.
func (w *Workflow) Validate(def *models.WorkflowDefinition) error {
	if err := w.validate.Struct(def); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}

	if def.TriggerType == models.TriggerTypeEvent && def.TriggerConfig.Event == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDefinition, ErrUnknownTriggerEvent)
	}

	if def.TriggerType == models.TriggerTypeSchedule && def.TriggerConfig.Cron == "" {
		return fmt.Errorf("%w: schedule triggers need a cron expression", ErrInvalidDefinition)
	}

	if err := w.validateFlow(&def.Flow); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}

	return nil
}

func (w *Workflow) validateFlow(flow *models.Flow) error {
	ids := make(map[string]bool, len(flow.Nodes))

	for _, node := range flow.Nodes {
		if node.ID == "" {
			return fmt.Errorf("flow has a node without an id")
		}

		if ids[node.ID] {
			return fmt.Errorf("duplicate node id %q", node.ID)
		}

		ids[node.ID] = true

		if err := w.registry.ValidateNode(node); err != nil {
			return err
		}
	}

	for _, edge := range flow.Edges {
		if !ids[edge.Source] {
			return fmt.Errorf("edge references unknown source node %q", edge.Source)
		}

		if !ids[edge.Target] {
			return fmt.Errorf("edge references unknown target node %q", edge.Target)
		}
	}

	return nil
}

// SetActive flips a definition's active flag.
func (w *Workflow) SetActive(ctx context.Context, id string, active bool) (*models.WorkflowDefinition, error) {
	def, err := w.definitions.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	def.IsActive = active

	if err := w.definitions.Save(ctx, def); err != nil {
		return nil, NewServiceError("set workflow active", err)
	}

	return def, nil
}
