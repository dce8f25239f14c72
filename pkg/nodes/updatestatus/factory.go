package updatestatus

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
	return NewUpdateStatusNode(node, f.store)
}

func (f *Factory) Type() models.NodeType {
	return models.NodeTypeUpdateStatus
}

func (f *Factory) Name() string {
	return "Update Status"
}

func (f *Factory) Description() string {
	return "Writes a single field on the row identified by the run's entity_id."
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"table": map[string]any{"type": "string"},
			"field": map[string]any{"type": "string"},
			"value": map[string]any{},
		},
		"required": []string{"table", "field"},
	}
}
