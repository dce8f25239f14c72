// Package updatestatus provides the single-field write node: it updates one
// column on the row identified by the run's entity_id variable.
package updatestatus

import (
	"context"
	"errors"
	"fmt"

	"github.com/funilhq/funil/pkg/interpolate"
	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/storage"
)

type UpdateStatusNode struct {
	id    string
	table string
	field string
	value any
	store storage.RecordStore
}

func NewUpdateStatusNode(node *models.WorkflowNode, store storage.RecordStore) (*UpdateStatusNode, error) {
	table, ok := node.Data["table"].(string)
	if !ok || table == "" {
		return nil, errors.New("missing required field 'table'")
	}

	field, ok := node.Data["field"].(string)
	if !ok || field == "" {
		return nil, errors.New("missing required field 'field'")
	}

	return &UpdateStatusNode{
		id:    node.ID,
		table: table,
		field: field,
		value: node.Data["value"],
		store: store,
	}, nil
}

func (n *UpdateStatusNode) Execute(ctx context.Context, _ *models.Flow, executionCtx *models.ExecutionContext) *models.NodeResult {
	entityID, ok := executionCtx.Variables["entity_id"].(string)
	if !ok || entityID == "" {
		return &models.NodeResult{
			Success: false,
			Error:   "missing 'entity_id' in execution variables",
		}
	}

	value := n.value
	if s, ok := value.(string); ok {
		value = interpolate.Resolve(s, executionCtx.Variables)
	}

	patch := map[string]any{n.field: value}

	if err := n.store.Update(ctx, n.table, patch, storage.Where("id", entityID)); err != nil {
		return &models.NodeResult{
			Success: false,
			Error:   fmt.Sprintf("failed to update %s.%s: %v", n.table, n.field, err),
		}
	}

	return &models.NodeResult{
		Success: true,
		Output: map[string]any{
			"table":     n.table,
			"field":     n.field,
			"value":     value,
			"entity_id": entityID,
		},
	}
}
