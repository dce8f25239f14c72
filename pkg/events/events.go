// Package events defines the event types flowing between the CRM, the
// trigger dispatcher and the workflow engine.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic carries every engine event on the bus.
const Topic = "funil.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// DomainEventReceived is published when the CRM reports a domain
	// occurrence (lead_created, deal_won, invoice_paid, ...).
	DomainEventReceived EventType = "crm.event.received"

	// Workflow execution lifecycle events.
	WorkflowExecutionStartedEvent   EventType = "workflow.execution.started"
	WorkflowExecutionCompletedEvent EventType = "workflow.execution.completed"
	WorkflowExecutionFailedEvent    EventType = "workflow.execution.failed"
)

// Well-known CRM domain event names.
const (
	LeadCreated  = "lead_created"
	LeadUpdated  = "lead_updated"
	DealCreated  = "deal_created"
	DealWon      = "deal_won"
	DealLost     = "deal_lost"
	InvoicePaid  = "invoice_paid"
	QuoteSent    = "quote_sent"
	TaskComplete = "task_completed"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

// DomainEvent is a named CRM occurrence with the entity it concerns.
type DomainEvent struct {
	BaseEvent

	Name       string         `json:"name"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Payload    map[string]any `json:"payload,omitempty"`
}

func (e DomainEvent) GetType() EventType {
	return DomainEventReceived
}

// NewDomainEvent creates a fully-populated domain event.
func NewDomainEvent(name, entityType, entityID string, payload map[string]any) DomainEvent {
	return DomainEvent{
		BaseEvent:  NewBaseEvent(DomainEventReceived, ""),
		Name:       name,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    payload,
	}
}

type WorkflowExecutionStarted struct {
	BaseEvent

	ExecutionID  string `json:"execution_id"`
	TriggerEvent string `json:"trigger_event"`
}

func (e WorkflowExecutionStarted) GetType() EventType {
	return WorkflowExecutionStartedEvent
}

type WorkflowExecutionCompleted struct {
	BaseEvent

	ExecutionID string        `json:"execution_id"`
	Duration    time.Duration `json:"duration"`
}

func (e WorkflowExecutionCompleted) GetType() EventType {
	return WorkflowExecutionCompletedEvent
}

type WorkflowExecutionFailed struct {
	BaseEvent

	ExecutionID string        `json:"execution_id"`
	Error       string        `json:"error"`
	Duration    time.Duration `json:"duration"`
}

func (e WorkflowExecutionFailed) GetType() EventType {
	return WorkflowExecutionFailedEvent
}
