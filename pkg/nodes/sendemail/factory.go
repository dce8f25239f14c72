package sendemail

import (
	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/protocol"
)

type Factory struct {
	sender protocol.EmailSender
}

func NewFactory(sender protocol.EmailSender) protocol.NodeFactory {
	return &Factory{sender: sender}
}

func (f *Factory) Create(node *models.WorkflowNode) (protocol.NodeExecutor, error) {
	return NewSendEmailNode(node, f.sender)
}

func (f *Factory) Type() models.NodeType {
	return models.NodeTypeSendEmail
}

func (f *Factory) Name() string {
	return "Send Email"
}

func (f *Factory) Description() string {
	return "Sends an email through the configured sender. Recipient, subject and body support placeholders."
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to":      map[string]any{"type": "string"},
			"subject": map[string]any{"type": "string"},
			"body":    map[string]any{"type": "string"},
		},
		"required": []string{"to", "subject"},
	}
}
