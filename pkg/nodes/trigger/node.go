// Package trigger provides the entry node of a flow: it passes the trigger
// payload through as its output and never fails.
package trigger

import (
	"context"

	"github.com/funilhq/funil/pkg/models"
)

type TriggerNode struct {
	id string
}

func NewTriggerNode(node *models.WorkflowNode) (*TriggerNode, error) {
	return &TriggerNode{id: node.ID}, nil
}

func (n *TriggerNode) Execute(_ context.Context, _ *models.Flow, executionCtx *models.ExecutionContext) *models.NodeResult {
	return &models.NodeResult{
		Success: true,
		Output: map[string]any{
			"event":   executionCtx.TriggerEvent,
			"payload": executionCtx.TriggerPayload,
		},
	}
}
