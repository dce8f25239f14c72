package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/funilhq/funil/pkg/storage"
)

// LogEmailSender writes outgoing email to the log instead of a mail
// gateway. It is the default sender until SMTP credentials are configured.
type LogEmailSender struct {
	logger *slog.Logger
}

func NewLogEmailSender(logger *slog.Logger) *LogEmailSender {
	return &LogEmailSender{logger: logger.With("module", "email")}
}

func (s *LogEmailSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Info("Sending email",
		"to", to,
		"subject", subject,
		"body_length", len(body))

	return nil
}

// StoreNotifier persists in-app notifications to the notifications table,
// where the CRM UI reads them.
type StoreNotifier struct {
	store storage.RecordStore
}

func NewStoreNotifier(store storage.RecordStore) *StoreNotifier {
	return &StoreNotifier{store: store}
}

func (n *StoreNotifier) Notify(ctx context.Context, userID, title, message string) error {
	_, err := n.store.Insert(ctx, storage.TableNotifications, map[string]any{
		"user_id":    userID,
		"title":      title,
		"message":    message,
		"read":       false,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	})

	return err
}
