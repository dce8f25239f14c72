package testutil

import (
	"context"
	"sync"
)

// SentEmail is one email captured by EmailRecorder.
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// EmailRecorder is an EmailSender that records what it was asked to send.
type EmailRecorder struct {
	mu   sync.Mutex
	sent []SentEmail
	Err  error
}

func NewEmailRecorder() *EmailRecorder {
	return &EmailRecorder{}
}

func (r *EmailRecorder) Send(_ context.Context, to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}

	r.sent = append(r.sent, SentEmail{To: to, Subject: subject, Body: body})

	return nil
}

// Sent returns a copy of the captured emails.
func (r *EmailRecorder) Sent() []SentEmail {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]SentEmail, len(r.sent))
	copy(out, r.sent)

	return out
}

// SentNotification is one notification captured by NotificationRecorder.
type SentNotification struct {
	UserID  string
	Title   string
	Message string
}

// NotificationRecorder is a Notifier that records what it was asked to send.
type NotificationRecorder struct {
	mu   sync.Mutex
	sent []SentNotification
	Err  error
}

func NewNotificationRecorder() *NotificationRecorder {
	return &NotificationRecorder{}
}

func (r *NotificationRecorder) Notify(_ context.Context, userID, title, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}

	r.sent = append(r.sent, SentNotification{UserID: userID, Title: title, Message: message})

	return nil
}

// Sent returns a copy of the captured notifications.
func (r *NotificationRecorder) Sent() []SentNotification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]SentNotification, len(r.sent))
	copy(out, r.sent)

	return out
}
