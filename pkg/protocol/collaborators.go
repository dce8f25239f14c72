package protocol

import "context"

// EmailSender delivers workflow emails. Implementations live outside the
// engine; failures are reported back as failed steps, never panics.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Notifier creates an in-app notification for a user.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string) error
}
