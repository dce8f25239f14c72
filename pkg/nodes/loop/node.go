// Package loop provides the array-inspection node: it resolves an array by
// dotted path from execution variables and reports its members. A non-array
// source degrades to a zero-length loop, not a failure.
package loop

import (
	"context"
	"errors"

	"github.com/funilhq/funil/pkg/interpolate"
	"github.com/funilhq/funil/pkg/models"
)

type LoopNode struct {
	id     string
	source string
}

func NewLoopNode(node *models.WorkflowNode) (*LoopNode, error) {
	source, ok := node.Data["source"].(string)
	if !ok || source == "" {
		return nil, errors.New("missing required field 'source'")
	}

	return &LoopNode{id: node.ID, source: source}, nil
}

func (n *LoopNode) Execute(_ context.Context, _ *models.Flow, executionCtx *models.ExecutionContext) *models.NodeResult {
	var items []any

	if value, ok := interpolate.Lookup(executionCtx.Variables, n.source); ok {
		if arr, ok := value.([]any); ok {
			items = arr
		}
	}

	return &models.NodeResult{
		Success: true,
		Output: map[string]any{
			"source": n.source,
			"count":  len(items),
			"items":  items,
		},
	}
}
