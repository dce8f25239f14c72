// Package protocol defines the interfaces and contracts for node executors
// and the collaborators they perform side effects through.
package protocol

import (
	"context"

	"github.com/funilhq/funil/pkg/models"
)

// NodeExecutor runs one node of a flow. Executors never return Go errors:
// every failure is reported inside the NodeResult so the coordinator can
// apply the definition's error policy.
type NodeExecutor interface {
	Execute(ctx context.Context, flow *models.Flow, executionCtx *models.ExecutionContext) *models.NodeResult
}

// NodeFactory creates executor instances and provides metadata about the
// node type.
type NodeFactory interface {
	// Create builds an executor bound to one node instance, parsing its
	// Data configuration. Missing required fields surface as errors here
	// and are reported by the coordinator as failed steps.
	Create(node *models.WorkflowNode) (NodeExecutor, error)

	// Type returns the node type this factory builds.
	Type() models.NodeType

	// Name returns the human-readable name for this node type.
	Name() string

	// Description returns a description of what this node does.
	Description() string

	// Schema returns the JSON schema for the node's Data configuration.
	Schema() map[string]any
}
