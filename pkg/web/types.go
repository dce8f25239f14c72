// Package web provides the REST API over workflow definitions, executions
// and event ingestion.
package web

import "github.com/funilhq/funil/pkg/models"

// SaveWorkflowRequest is the request body for creating or replacing a
// workflow definition.
type SaveWorkflowRequest struct {
	Name          string               `json:"name"           validate:"required,min=3"`
	Description   string               `json:"description,omitempty"`
	TriggerType   models.TriggerType   `json:"trigger_type"   validate:"required,oneof=event schedule webhook manual"`
	TriggerConfig models.TriggerConfig `json:"trigger_config"`
	Flow          models.Flow          `json:"flow_definition"`
	IsActive      *bool                `json:"is_active,omitempty"`
	ErrorHandling models.ErrorHandling `json:"error_handling,omitempty" validate:"omitempty,oneof=stop continue retry"`
	Owner         string               `json:"owner,omitempty"`
}

// RunWorkflowRequest is the request body for a manual run.
type RunWorkflowRequest struct {
	TriggerEvent string         `json:"trigger_event,omitempty"`
	Payload      map[string]any `json:"payload,omitempty"`
}

// IngestEventRequest is the request body for POST /events.
type IngestEventRequest struct {
	Event      string         `json:"event"       validate:"required"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Payload    map[string]any `json:"payload,omitempty"`
}

func (r *SaveWorkflowRequest) toDefinition(id string) *models.WorkflowDefinition {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}

	return &models.WorkflowDefinition{
		ID:            id,
		Name:          r.Name,
		Description:   r.Description,
		TriggerType:   r.TriggerType,
		TriggerConfig: r.TriggerConfig,
		Flow:          r.Flow,
		IsActive:      active,
		ErrorHandling: r.ErrorHandling,
		Owner:         r.Owner,
	}
}
