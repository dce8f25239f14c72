package models

import "time"

// RuleAction is one side effect dispatched when an automation rule matches.
// Type is restricted to the action-capable node types (send_email,
// create_task, notification, update_status); Config carries the same shape
// as the corresponding node's Data.
type RuleAction struct {
	Type   NodeType       `json:"type"   validate:"required"`
	Config map[string]any `json:"config"`
}

// AutomationRule is the flat condition→action variant of a workflow: no
// graph, just AND-combined conditions gating a list of actions.
type AutomationRule struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"  validate:"required,min=3"`
	Event      string             `json:"event" validate:"required"`
	IsActive   bool               `json:"is_active"`
	Conditions []TriggerCondition `json:"conditions,omitempty"`
	Actions    []RuleAction       `json:"actions"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}
