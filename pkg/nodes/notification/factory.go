package notification

import (
	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/protocol"
)

type Factory struct {
	notifier protocol.Notifier
}

func NewFactory(notifier protocol.Notifier) protocol.NodeFactory {
	return &Factory{notifier: notifier}
}

func (f *Factory) Create(node *models.WorkflowNode) (protocol.NodeExecutor, error) {
	return NewNotificationNode(node, f.notifier)
}

func (f *Factory) Type() models.NodeType {
	return models.NodeTypeNotification
}

func (f *Factory) Name() string {
	return "Notification"
}

func (f *Factory) Description() string {
	return "Creates an in-app notification for the current actor."
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":   map[string]any{"type": "string"},
			"message": map[string]any{"type": "string"},
		},
		"required": []string{"title"},
	}
}
