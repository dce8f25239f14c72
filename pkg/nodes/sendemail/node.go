// Package sendemail provides the email action node.
package sendemail

import (
	"context"
	"errors"
	"fmt"

	"github.com/funilhq/funil/pkg/interpolate"
	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/protocol"
)

type SendEmailNode struct {
	id      string
	to      string
	subject string
	body    string
	sender  protocol.EmailSender
}

func NewSendEmailNode(node *models.WorkflowNode, sender protocol.EmailSender) (*SendEmailNode, error) {
	to, ok := node.Data["to"].(string)
	if !ok || to == "" {
		return nil, errors.New("missing required field 'to'")
	}

	subject, ok := node.Data["subject"].(string)
	if !ok || subject == "" {
		return nil, errors.New("missing required field 'subject'")
	}

	body, _ := node.Data["body"].(string)

	return &SendEmailNode{
		id:      node.ID,
		to:      to,
		subject: subject,
		body:    body,
		sender:  sender,
	}, nil
}

func (n *SendEmailNode) Execute(ctx context.Context, _ *models.Flow, executionCtx *models.ExecutionContext) *models.NodeResult {
	to := interpolate.Resolve(n.to, executionCtx.Variables)
	subject := interpolate.Resolve(n.subject, executionCtx.Variables)
	body := interpolate.Resolve(n.body, executionCtx.Variables)

	if err := n.sender.Send(ctx, to, subject, body); err != nil {
		return &models.NodeResult{
			Success: false,
			Error:   fmt.Sprintf("failed to send email: %v", err),
		}
	}

	return &models.NodeResult{
		Success: true,
		Output: map[string]any{
			"to":      to,
			"subject": subject,
			"sent":    true,
		},
	}
}
