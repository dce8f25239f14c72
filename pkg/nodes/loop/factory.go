package loop

import (
	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/protocol"
)

type Factory struct{}

func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

func (f *Factory) Create(node *models.WorkflowNode) (protocol.NodeExecutor, error) {
	return NewLoopNode(node)
}

func (f *Factory) Type() models.NodeType {
	return models.NodeTypeLoop
}

func (f *Factory) Name() string {
	return "Loop"
}

func (f *Factory) Description() string {
	return "Resolves an array from execution variables and reports its length and members."
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"source": map[string]any{
				"type":        "string",
				"description": "Dotted path to an array in execution variables.",
			},
		},
		"required": []string{"source"},
	}
}
