package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/funilhq/funil/pkg/models"
)

type fakeNotifier struct {
	userID  string
	title   string
	message string
	err     error
}

func (f *fakeNotifier) Notify(_ context.Context, userID, title, message string) error {
	f.userID = userID
	f.title = title
	f.message = message

	return f.err
}

func TestNotificationNode_NotifiesAssignedUser(t *testing.T) {
	notifier := &fakeNotifier{}

	node, err := NewNotificationNode(&models.WorkflowNode{
		ID:   "n1",
		Type: models.NodeTypeNotification,
		Data: map[string]any{
			"title":   "Deal won: {{deal.name}}",
			"message": "Value {{deal.value}}",
		},
	}, notifier)
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	execCtx := &models.ExecutionContext{Variables: map[string]any{
		"user_id": "u-1",
		"deal":    map[string]any{"name": "Acme", "value": float64(5000)},
	}}

	result := node.Execute(context.Background(), nil, execCtx)
	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.Error)
	}

	if notifier.userID != "u-1" {
		t.Errorf("Expected notification for u-1, got: %s", notifier.userID)
	}

	if notifier.title != "Deal won: Acme" {
		t.Errorf("Expected resolved title, got: %s", notifier.title)
	}

	if notifier.message != "Value 5000" {
		t.Errorf("Expected resolved message, got: %s", notifier.message)
	}
}

func TestNotificationNode_NotifierFailure(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("store unavailable")}

	node, err := NewNotificationNode(&models.WorkflowNode{
		ID:   "n1",
		Type: models.NodeTypeNotification,
		Data: map[string]any{"title": "hi"},
	}, notifier)
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	result := node.Execute(context.Background(), nil, &models.ExecutionContext{Variables: map[string]any{}})
	if result.Success {
		t.Fatal("Expected failure when notifier errors")
	}
}

func TestNotificationNode_MissingTitle(t *testing.T) {
	_, err := NewNotificationNode(&models.WorkflowNode{
		ID:   "n1",
		Type: models.NodeTypeNotification,
		Data: map[string]any{},
	}, &fakeNotifier{})
	if err == nil {
		t.Fatal("Expected error for missing 'title'")
	}
}
