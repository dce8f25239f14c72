package delay

import (
	"time"

	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/protocol"
)

type Factory struct {
	maxDelay time.Duration
}

func NewFactory(maxDelay time.Duration) protocol.NodeFactory {
	return &Factory{maxDelay: maxDelay}
}

func (f *Factory) Create(node *models.WorkflowNode) (protocol.NodeExecutor, error) {
	return NewDelayNode(node, f.maxDelay)
}

func (f *Factory) Type() models.NodeType {
	return models.NodeTypeDelay
}

func (f *Factory) Name() string {
	return "Delay"
}

func (f *Factory) Description() string {
	return "Suspends the run for a bounded duration before continuing."
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"delay_value": map[string]any{"type": "number", "minimum": 0},
			"delay_unit": map[string]any{
				"type": "string",
				"enum": []string{"seconds", "minutes", "hours", "days"},
			},
		},
	}
}
