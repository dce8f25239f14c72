package createtask

import (
	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/protocol"
	"github.com/funilhq/funil/pkg/storage"
)

type Factory struct {
	store storage.RecordStore
}

func NewFactory(store storage.RecordStore) protocol.NodeFactory {
	return &Factory{store: store}
}

func (f *Factory) Create(node *models.WorkflowNode) (protocol.NodeExecutor, error) {
	return NewCreateTaskNode(node, f.store)
}

func (f *Factory) Type() models.NodeType {
	return models.NodeTypeCreateTask
}

func (f *Factory) Name() string {
	return "Create Task"
}

func (f *Factory) Description() string {
	return "Creates a follow-up task, due after a configurable number of days, linked to the triggering entity."
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":           map[string]any{"type": "string"},
			"description":     map[string]any{"type": "string"},
			"due_offset_days": map[string]any{"type": "number", "minimum": 0},
		},
		"required": []string{"title"},
	}
}
