package cmd

import (
	"log/slog"
	"time"

	"github.com/funilhq/funil/pkg/registry"
	"github.com/funilhq/funil/pkg/services"
	"github.com/funilhq/funil/pkg/storage"
)

// NewRegistry builds the default node registry with the production
// collaborators: log-backed email and store-backed notifications.
func NewRegistry(logger *slog.Logger, store storage.RecordStore, maxDelay time.Duration, fetchLimit int) *registry.Registry {
	return registry.NewDefaultRegistry(registry.Deps{
		Logger:     logger,
		Store:      store,
		Email:      services.NewLogEmailSender(logger),
		Notifier:   services.NewStoreNotifier(store),
		MaxDelay:   maxDelay,
		FetchLimit: fetchLimit,
	})
}
