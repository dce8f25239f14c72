package models

import "time"

// ExecutionContext is the ephemeral, per-run state threaded through every
// node executor. It is owned exclusively by the coordinator driving the run;
// only its step log survives, inside the persisted execution record.
type ExecutionContext struct {
	WorkflowID     string          `json:"workflow_id"`
	ExecutionID    string          `json:"execution_id"`
	TriggerEvent   string          `json:"trigger_event"`
	TriggerPayload map[string]any  `json:"trigger_payload,omitempty"`
	Variables      map[string]any  `json:"variables,omitempty"`
	Steps          []ExecutionStep `json:"steps"`
	CurrentNodeID  string          `json:"current_node_id,omitempty"`
	StartedAt      time.Time       `json:"started_at"`
}

// AppendStep records a completed step in execution order.
func (c *ExecutionContext) AppendStep(step ExecutionStep) {
	c.Steps = append(c.Steps, step)
}

// SetVariable stores a value for downstream nodes.
func (c *ExecutionContext) SetVariable(key string, value any) {
	if c.Variables == nil {
		c.Variables = make(map[string]any)
	}

	c.Variables[key] = value
}

// NodeResult is what a node executor produces. Executors never return Go
// errors: every failure is reported through Success/Error so the coordinator
// can apply the definition's error policy.
type NodeResult struct {
	Success     bool           `json:"success"`
	Output      map[string]any `json:"output,omitempty"`
	Error       string         `json:"error,omitempty"`
	NextNodeIDs []string       `json:"next_node_ids,omitempty"` // set only by branching nodes
}
