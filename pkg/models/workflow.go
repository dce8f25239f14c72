// Package models defines the core domain models for CRM workflow automation.
package models

import "time"

// TriggerType represents how a workflow definition is started.
type TriggerType string

const (
	TriggerTypeEvent    TriggerType = "event"    // Fired by a CRM domain event
	TriggerTypeSchedule TriggerType = "schedule" // Fired by a cron expression
	TriggerTypeWebhook  TriggerType = "webhook"  // Fired by an inbound HTTP call
	TriggerTypeManual   TriggerType = "manual"   // Fired by a user action
)

// ErrorHandling controls how the execution loop reacts to a failed node.
type ErrorHandling string

const (
	ErrorHandlingStop     ErrorHandling = "stop"
	ErrorHandlingContinue ErrorHandling = "continue"
	ErrorHandlingRetry    ErrorHandling = "retry"
)

// TriggerCondition is a single field/operator/value predicate evaluated
// against the trigger payload. Conditions on a trigger are AND-combined.
type TriggerCondition struct {
	Field    string `json:"field"    validate:"required"`
	Operator string `json:"operator" validate:"required"`
	Value    any    `json:"value"`
}

// TriggerConfig holds trigger-type specific configuration.
type TriggerConfig struct {
	Event      string             `json:"event,omitempty"`
	Conditions []TriggerCondition `json:"conditions,omitempty"`
	Cron       string             `json:"cron,omitempty"`
}

// WorkflowDefinition is a user-authored automation. Read-only to the engine
// at run time.
type WorkflowDefinition struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"           validate:"required,min=3"`
	Description   string        `json:"description,omitempty"`
	TriggerType   TriggerType   `json:"trigger_type"   validate:"required,oneof=event schedule webhook manual"`
	TriggerConfig TriggerConfig `json:"trigger_config"`
	Flow          Flow          `json:"flow_definition"`
	IsActive      bool          `json:"is_active"`
	ErrorHandling ErrorHandling `json:"error_handling,omitempty"`
	MaxRetries    int           `json:"max_retries,omitempty"`
	Owner         string        `json:"owner,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Flow is the node+edge graph authored for one workflow.
type Flow struct {
	Nodes []*WorkflowNode `json:"nodes"`
	Edges []*WorkflowEdge `json:"edges"`
}

// NodeByID returns the node with the given id.
func (f *Flow) NodeByID(id string) (*WorkflowNode, bool) {
	for _, node := range f.Nodes {
		if node.ID == id {
			return node, true
		}
	}

	return nil, false
}

// TriggerNodes returns every trigger-typed node in declaration order.
func (f *Flow) TriggerNodes() []*WorkflowNode {
	var nodes []*WorkflowNode

	for _, node := range f.Nodes {
		if node.Type == NodeTypeTrigger {
			nodes = append(nodes, node)
		}
	}

	return nodes
}

// EdgesFrom returns every edge whose source is the given node id.
func (f *Flow) EdgesFrom(nodeID string) []*WorkflowEdge {
	var edges []*WorkflowEdge

	for _, edge := range f.Edges {
		if edge.Source == nodeID {
			edges = append(edges, edge)
		}
	}

	return edges
}

// EdgeFromHandle returns the edge leaving nodeID through the named output
// handle, e.g. the "true" branch of a condition node.
func (f *Flow) EdgeFromHandle(nodeID, handle string) (*WorkflowEdge, bool) {
	for _, edge := range f.Edges {
		if edge.Source == nodeID && edge.SourceHandle == handle {
			return edge, true
		}
	}

	return nil, false
}
