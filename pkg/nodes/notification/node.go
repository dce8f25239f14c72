// Package notification provides the in-app notification action node.
package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/funilhq/funil/pkg/interpolate"
	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/protocol"
)

type NotificationNode struct {
	id       string
	title    string
	message  string
	notifier protocol.Notifier
}

func NewNotificationNode(node *models.WorkflowNode, notifier protocol.Notifier) (*NotificationNode, error) {
	title, ok := node.Data["title"].(string)
	if !ok || title == "" {
		return nil, errors.New("missing required field 'title'")
	}

	message, _ := node.Data["message"].(string)

	return &NotificationNode{
		id:       node.ID,
		title:    title,
		message:  message,
		notifier: notifier,
	}, nil
}

func (n *NotificationNode) Execute(ctx context.Context, _ *models.Flow, executionCtx *models.ExecutionContext) *models.NodeResult {
	title := interpolate.Resolve(n.title, executionCtx.Variables)
	message := interpolate.Resolve(n.message, executionCtx.Variables)

	userID, _ := executionCtx.Variables["user_id"].(string)

	if err := n.notifier.Notify(ctx, userID, title, message); err != nil {
		return &models.NodeResult{
			Success: false,
			Error:   fmt.Sprintf("failed to create notification: %v", err),
		}
	}

	return &models.NodeResult{
		Success: true,
		Output: map[string]any{
			"title":   title,
			"message": message,
			"user_id": userID,
		},
	}
}
