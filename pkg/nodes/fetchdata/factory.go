package fetchdata

import (
	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/protocol"
	"github.com/funilhq/funil/pkg/storage"
)

type Factory struct {
	store storage.RecordStore
	limit int
}

func NewFactory(store storage.RecordStore, limit int) protocol.NodeFactory {
	return &Factory{store: store, limit: limit}
}

func (f *Factory) Create(node *models.WorkflowNode) (protocol.NodeExecutor, error) {
	return NewFetchDataNode(node, f.store, f.limit)
}

func (f *Factory) Type() models.NodeType {
	return models.NodeTypeFetchData
}

func (f *Factory) Name() string {
	return "Fetch Data"
}

func (f *Factory) Description() string {
	return "Reads filtered rows from a table and exposes them to downstream nodes as '<table>_results'."
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"table": map[string]any{"type": "string"},
			"filters": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"field": map[string]any{"type": "string"},
						"operator": map[string]any{
							"type": "string",
							"enum": []string{"equals", "not_equals", "greater_than", "less_than"},
						},
						"value": map[string]any{},
					},
					"required": []string{"field", "operator"},
				},
			},
		},
		"required": []string{"table"},
	}
}
