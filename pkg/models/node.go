package models

// NodeType identifies the behavior of a workflow node. The set is closed:
// anything outside it executes as a pass-through no-op.
type NodeType string

const (
	NodeTypeTrigger      NodeType = "trigger"
	NodeTypeSendEmail    NodeType = "send_email"
	NodeTypeCreateTask   NodeType = "create_task"
	NodeTypeNotification NodeType = "notification"
	NodeTypeCondition    NodeType = "condition"
	NodeTypeDelay        NodeType = "delay"
	NodeTypeLoop         NodeType = "loop"
	NodeTypeFetchData    NodeType = "fetch_data"
	NodeTypeUpdateStatus NodeType = "update_status"
)

// Output handles used by condition edges.
const (
	BranchTrue  = "true"
	BranchFalse = "false"
)

// WorkflowNode is one unit of work in a flow. Data carries node-type
// specific configuration (recipient/subject for an email node, etc).
type WorkflowNode struct {
	ID   string         `json:"id"   validate:"required"`
	Type NodeType       `json:"type" validate:"required"`
	Data map[string]any `json:"data"`
}

// WorkflowEdge is a directed connection between two nodes. SourceHandle
// names the output port the edge leaves through; condition branches are
// distinguished solely by it.
type WorkflowEdge struct {
	Source       string `json:"source" validate:"required"`
	Target       string `json:"target" validate:"required"`
	SourceHandle string `json:"sourceHandle,omitempty"`
}
