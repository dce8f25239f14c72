// Package fetchdata provides the table-read node: it applies a list of
// filters to a table, caps the result set and stores the rows back into
// execution variables for downstream nodes.
package fetchdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/funilhq/funil/pkg/interpolate"
	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/storage"
)

// DefaultFetchLimit caps table reads when no limit is configured.
const DefaultFetchLimit = 100

type filterConfig struct {
	field    string
	operator string
	value    any
}

type FetchDataNode struct {
	id      string
	table   string
	filters []filterConfig
	limit   int
	store   storage.RecordStore
}

func NewFetchDataNode(node *models.WorkflowNode, store storage.RecordStore, limit int) (*FetchDataNode, error) {
	table, ok := node.Data["table"].(string)
	if !ok || table == "" {
		return nil, errors.New("missing required field 'table'")
	}

	if limit <= 0 || limit > DefaultFetchLimit {
		limit = DefaultFetchLimit
	}

	var filters []filterConfig

	if raw, ok := node.Data["filters"].([]any); ok {
		for _, item := range raw {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}

			field, _ := entry["field"].(string)
			operator, _ := entry["operator"].(string)

			if field == "" || operator == "" {
				continue
			}

			filters = append(filters, filterConfig{
				field:    field,
				operator: operator,
				value:    entry["value"],
			})
		}
	}

	return &FetchDataNode{
		id:      node.ID,
		table:   table,
		filters: filters,
		limit:   limit,
		store:   store,
	}, nil
}

func (n *FetchDataNode) Execute(ctx context.Context, _ *models.Flow, executionCtx *models.ExecutionContext) *models.NodeResult {
	filter := storage.Filter{Limit: n.limit}

	for _, f := range n.filters {
		value := f.value
		if s, ok := value.(string); ok {
			value = interpolate.Resolve(s, executionCtx.Variables)
		}

		filter.Conditions = append(filter.Conditions, storage.Condition{
			Field:    f.field,
			Operator: f.operator,
			Value:    value,
		})
	}

	rows, err := n.store.Select(ctx, n.table, filter)
	if err != nil {
		return &models.NodeResult{
			Success: false,
			Error:   fmt.Sprintf("failed to fetch from %s: %v", n.table, err),
		}
	}

	results := make([]any, len(rows))
	for i, row := range rows {
		results[i] = row
	}

	// Downstream nodes address the result set as "<table>_results".
	executionCtx.SetVariable(n.table+"_results", results)

	return &models.NodeResult{
		Success: true,
		Output: map[string]any{
			"table": n.table,
			"count": len(rows),
		},
	}
}
