// Package registry maps node types to their executor factories. A flow can
// carry node types the registry has never heard of; those resolve to a
// pass-through executor so an old engine can still walk a newer flow.
package registry

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/nodes/noop"
	"github.com/funilhq/funil/pkg/protocol"
)

type Registry struct {
	logger    *slog.Logger
	factories map[models.NodeType]protocol.NodeFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[models.NodeType]protocol.NodeFactory),
	}
}

func (r *Registry) Register(factory protocol.NodeFactory) {
	r.factories[factory.Type()] = factory
}

// CreateExecutor builds an executor for the node. Unregistered node types
// fall back to a no-op executor instead of failing the run.
func (r *Registry) CreateExecutor(node *models.WorkflowNode) (protocol.NodeExecutor, error) {
	factory, ok := r.factories[node.Type]
	if !ok {
		r.logger.Warn("Unknown node type, skipping node",
			"node_id", node.ID,
			"node_type", node.Type)

		return noop.NewNoopNode(node), nil
	}

	if err := r.validateConfig(factory, node); err != nil {
		return nil, err
	}

	return factory.Create(node)
}

// ValidateNode checks a node's configuration without executing it.
func (r *Registry) ValidateNode(node *models.WorkflowNode) error {
	factory, ok := r.factories[node.Type]
	if !ok {
		return nil
	}

	if err := r.validateConfig(factory, node); err != nil {
		return err
	}

	_, err := factory.Create(node)

	return err
}

// AvailableTypes lists the registered node types.
func (r *Registry) AvailableTypes() []models.NodeType {
	types := make([]models.NodeType, 0, len(r.factories))
	for nodeType := range r.factories {
		types = append(types, nodeType)
	}

	return types
}

// Schema returns the config schema for a registered node type.
func (r *Registry) Schema(nodeType models.NodeType) (map[string]any, bool) {
	factory, ok := r.factories[nodeType]
	if !ok {
		return nil, false
	}

	return factory.Schema(), true
}

func (r *Registry) validateConfig(factory protocol.NodeFactory, node *models.WorkflowNode) error {
	schema := factory.Schema()
	if schema == nil {
		return nil
	}

	data := node.Data
	if data == nil {
		data = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate node %s config: %w", node.ID, err)
	}

	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("invalid config for node %s (%s): %s",
			node.ID, node.Type, strings.Join(details, "; "))
	}

	return nil
}
