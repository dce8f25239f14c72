package trigger

import (
	"context"
	"testing"

	"github.com/funilhq/funil/pkg/models"
)

func TestTriggerNode_PassesEventThrough(t *testing.T) {
	node, err := NewTriggerNode(&models.WorkflowNode{ID: "1", Type: models.NodeTypeTrigger})
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	execCtx := &models.ExecutionContext{
		TriggerEvent:   "lead_created",
		TriggerPayload: map[string]any{"lead": map[string]any{"name": "Ada"}},
	}

	result := node.Execute(context.Background(), nil, execCtx)
	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.Error)
	}

	if result.Output["event"] != "lead_created" {
		t.Errorf("Expected trigger event in output, got: %v", result.Output["event"])
	}

	if result.NextNodeIDs != nil {
		t.Errorf("Expected default edge following, got explicit next nodes: %v", result.NextNodeIDs)
	}
}
