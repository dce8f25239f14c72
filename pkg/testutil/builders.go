// Package testutil provides test data builders and fake collaborators.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/funilhq/funil/pkg/models"
)

// CreateTestNode creates a WorkflowNode with default values that can be
// overridden per test.
func CreateTestNode(overrides ...func(*models.WorkflowNode)) *models.WorkflowNode {
	node := &models.WorkflowNode{
		ID:   uuid.New().String(),
		Type: models.NodeTypeSendEmail,
		Data: map[string]any{"to": "test@example.com", "subject": "test"},
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithID sets the node id.
func WithID(id string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.ID = id
	}
}

// WithType sets the node type.
func WithType(nodeType models.NodeType) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Type = nodeType
	}
}

// WithData sets the node configuration data.
func WithData(data map[string]any) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Data = data
	}
}

// CreateTestDefinition creates an active workflow definition with the given
// flow, triggered by the given event.
func CreateTestDefinition(event string, flow *models.Flow) *models.WorkflowDefinition {
	now := time.Now().UTC()

	return &models.WorkflowDefinition{
		ID:          uuid.New().String(),
		Name:        "Test Workflow",
		TriggerType: models.TriggerTypeEvent,
		TriggerConfig: models.TriggerConfig{
			Event: event,
		},
		Flow:      *flow,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// LinearFlow builds a flow whose nodes are connected in the given order,
// starting from a trigger node with id "1".
func LinearFlow(nodes ...*models.WorkflowNode) *models.Flow {
	all := append([]*models.WorkflowNode{
		{ID: "1", Type: models.NodeTypeTrigger, Data: map[string]any{}},
	}, nodes...)

	edges := make([]*models.WorkflowEdge, 0, len(all)-1)
	for i := 0; i < len(all)-1; i++ {
		edges = append(edges, &models.WorkflowEdge{
			Source: all[i].ID,
			Target: all[i+1].ID,
		})
	}

	return &models.Flow{Nodes: all, Edges: edges}
}
