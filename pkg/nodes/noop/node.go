// Package noop provides the pass-through executor used for node types
// outside the recognized set. Unknown nodes succeed without doing anything
// so a newer editor cannot break older engine deployments.
package noop

import (
	"context"

	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/protocol"
)

type NoopNode struct {
	id       string
	nodeType models.NodeType
}

func NewNoopNode(node *models.WorkflowNode) *NoopNode {
	return &NoopNode{id: node.ID, nodeType: node.Type}
}

func (n *NoopNode) Execute(_ context.Context, _ *models.Flow, _ *models.ExecutionContext) *models.NodeResult {
	return &models.NodeResult{
		Success: true,
		Output: map[string]any{
			"skipped":   true,
			"node_type": string(n.nodeType),
		},
	}
}

type Factory struct{}

func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

func (f *Factory) Create(node *models.WorkflowNode) (protocol.NodeExecutor, error) {
	return NewNoopNode(node), nil
}

func (f *Factory) Type() models.NodeType {
	return "noop"
}

func (f *Factory) Name() string {
	return "No-op"
}

func (f *Factory) Description() string {
	return "Pass-through executor for unrecognized node types."
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{"type": "object"}
}
