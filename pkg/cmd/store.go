package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/funilhq/funil/pkg/storage"
	"github.com/funilhq/funil/pkg/storage/memory"
	"github.com/funilhq/funil/pkg/storage/postgres"
)

// NewStore builds the record store for the given database URL. An empty URL
// selects the in-memory store (single-process deployments and development);
// postgres:// URLs get the JSONB store with migrations applied.
func NewStore(ctx context.Context, logger *slog.Logger, databaseURL string) (storage.RecordStore, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return postgres.NewStore(ctx, logger, databaseURL)
	}

	logger.Warn("No database URL configured, using in-memory store")

	return memory.NewStore(), nil
}
