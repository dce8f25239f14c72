// Package createtask provides the task-creation action node: it writes a
// follow-up task row scoped to the entity that triggered the run.
package createtask

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/funilhq/funil/pkg/interpolate"
	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/storage"
)

type CreateTaskNode struct {
	id            string
	title         string
	description   string
	dueOffsetDays int
	store         storage.RecordStore
}

func NewCreateTaskNode(node *models.WorkflowNode, store storage.RecordStore) (*CreateTaskNode, error) {
	title, ok := node.Data["title"].(string)
	if !ok || title == "" {
		return nil, errors.New("missing required field 'title'")
	}

	description, _ := node.Data["description"].(string)

	dueOffsetDays := 0
	switch v := node.Data["due_offset_days"].(type) {
	case float64:
		dueOffsetDays = int(v)
	case int:
		dueOffsetDays = v
	}

	return &CreateTaskNode{
		id:            node.ID,
		title:         title,
		description:   description,
		dueOffsetDays: dueOffsetDays,
		store:         store,
	}, nil
}

func (n *CreateTaskNode) Execute(ctx context.Context, _ *models.Flow, executionCtx *models.ExecutionContext) *models.NodeResult {
	title := interpolate.Resolve(n.title, executionCtx.Variables)
	description := interpolate.Resolve(n.description, executionCtx.Variables)
	dueDate := time.Now().UTC().AddDate(0, 0, n.dueOffsetDays)

	row := map[string]any{
		"title":       title,
		"description": description,
		"due_date":    dueDate.Format(time.RFC3339),
		"status":      "pending",
		"workflow_id": executionCtx.WorkflowID,
	}

	if entityType, ok := executionCtx.Variables["entity_type"]; ok {
		row["entity_type"] = entityType
	}

	if entityID, ok := executionCtx.Variables["entity_id"]; ok {
		row["entity_id"] = entityID
	}

	created, err := n.store.Insert(ctx, storage.TableTasks, row)
	if err != nil {
		return &models.NodeResult{
			Success: false,
			Error:   fmt.Sprintf("failed to create task: %v", err),
		}
	}

	return &models.NodeResult{
		Success: true,
		Output: map[string]any{
			"task_id":  created["id"],
			"title":    title,
			"due_date": row["due_date"],
		},
	}
}
