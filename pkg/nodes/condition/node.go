// Package condition provides the branching node: it evaluates a single
// field/operator/value predicate and routes execution through the edge whose
// sourceHandle matches the boolean result.
package condition

import (
	"context"
	"errors"

	"github.com/funilhq/funil/pkg/conditions"
	"github.com/funilhq/funil/pkg/models"
)

type ConditionNode struct {
	id       string
	field    string
	operator string
	value    any
}

func NewConditionNode(node *models.WorkflowNode) (*ConditionNode, error) {
	field, ok := node.Data["field"].(string)
	if !ok || field == "" {
		return nil, errors.New("missing required field 'field'")
	}

	operator, ok := node.Data["operator"].(string)
	if !ok || operator == "" {
		return nil, errors.New("missing required field 'operator'")
	}

	return &ConditionNode{
		id:       node.ID,
		field:    field,
		operator: operator,
		value:    node.Data["value"],
	}, nil
}

// Execute never fails: the absence of a matching branch edge simply yields
// no next node.
func (n *ConditionNode) Execute(_ context.Context, flow *models.Flow, executionCtx *models.ExecutionContext) *models.NodeResult {
	result := conditions.Evaluate(n.field, n.operator, n.value, executionCtx.Variables)

	handle := models.BranchFalse
	if result {
		handle = models.BranchTrue
	}

	// Explicit next ids override default edge following, even when empty.
	nextNodeIDs := make([]string, 0, 1)
	if edge, ok := flow.EdgeFromHandle(n.id, handle); ok {
		nextNodeIDs = append(nextNodeIDs, edge.Target)
	}

	return &models.NodeResult{
		Success: true,
		Output: map[string]any{
			"condition_result": result,
			"field":            n.field,
			"operator":         n.operator,
		},
		NextNodeIDs: nextNodeIDs,
	}
}
