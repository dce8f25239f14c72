package trigger

import (
	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/protocol"
)

type Factory struct{}

func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

func (f *Factory) Create(node *models.WorkflowNode) (protocol.NodeExecutor, error) {
	return NewTriggerNode(node)
}

func (f *Factory) Type() models.NodeType {
	return models.NodeTypeTrigger
}

func (f *Factory) Name() string {
	return "Trigger"
}

func (f *Factory) Description() string {
	return "Entry point of a flow. Emits the trigger event payload for downstream nodes."
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}
