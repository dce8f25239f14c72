package updatestatus

import (
	"context"
	"testing"

	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/storage"
	"github.com/funilhq/funil/pkg/storage/memory"
)

func TestUpdateStatusNode_UpdatesEntityRow(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	row, err := store.Insert(ctx, "deals", map[string]any{"name": "big deal", "status": "open"})
	if err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}

	node, err := NewUpdateStatusNode(&models.WorkflowNode{
		ID:   "u1",
		Type: models.NodeTypeUpdateStatus,
		Data: map[string]any{"table": "deals", "field": "status", "value": "won"},
	}, store)
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	execCtx := &models.ExecutionContext{Variables: map[string]any{"entity_id": row["id"]}}

	result := node.Execute(ctx, nil, execCtx)
	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.Error)
	}

	rows, err := store.Select(ctx, "deals", storage.Where("id", row["id"]))
	if err != nil {
		t.Fatalf("Failed to re-read row: %v", err)
	}

	if len(rows) != 1 || rows[0]["status"] != "won" {
		t.Errorf("Expected status 'won', got: %v", rows)
	}
}

func TestUpdateStatusNode_ResolvesValuePlaceholder(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	row, err := store.Insert(ctx, "leads", map[string]any{"stage": "new"})
	if err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}

	node, err := NewUpdateStatusNode(&models.WorkflowNode{
		ID:   "u1",
		Type: models.NodeTypeUpdateStatus,
		Data: map[string]any{"table": "leads", "field": "stage", "value": "{{target_stage}}"},
	}, store)
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	execCtx := &models.ExecutionContext{Variables: map[string]any{
		"entity_id":    row["id"],
		"target_stage": "qualified",
	}}

	result := node.Execute(ctx, nil, execCtx)
	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.Error)
	}

	rows, _ := store.Select(ctx, "leads", storage.Where("id", row["id"]))
	if len(rows) != 1 || rows[0]["stage"] != "qualified" {
		t.Errorf("Expected stage 'qualified', got: %v", rows)
	}
}

func TestUpdateStatusNode_MissingEntityID(t *testing.T) {
	node, err := NewUpdateStatusNode(&models.WorkflowNode{
		ID:   "u1",
		Type: models.NodeTypeUpdateStatus,
		Data: map[string]any{"table": "deals", "field": "status", "value": "won"},
	}, memory.NewStore())
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	result := node.Execute(context.Background(), nil, &models.ExecutionContext{Variables: map[string]any{}})
	if result.Success {
		t.Fatal("Expected failure without entity_id")
	}

	if result.Error != "missing 'entity_id' in execution variables" {
		t.Errorf("Unexpected error message: %s", result.Error)
	}
}

func TestUpdateStatusNode_MissingConfig(t *testing.T) {
	_, err := NewUpdateStatusNode(&models.WorkflowNode{
		ID:   "u1",
		Type: models.NodeTypeUpdateStatus,
		Data: map[string]any{"table": "deals"},
	}, memory.NewStore())
	if err == nil {
		t.Fatal("Expected error for missing 'field'")
	}
}
