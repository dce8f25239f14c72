// Package postgres provides the PostgreSQL record store implementation.
// Rows are stored as JSONB documents keyed by table name and id, so the
// schemaless insert/update/select contract matches the in-memory store.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/funilhq/funil/pkg/storage"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Store implements storage.RecordStore on top of PostgreSQL.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore connects to the database and runs migrations.
func NewStore(ctx context.Context, logger *slog.Logger, databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger.With("module", "postgres_store"),
	}

	migrationManager := NewMigrationManager(logger, db, migrations())
	if err := migrationManager.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Insert stores a row, assigning an id when absent.
func (s *Store) Insert(ctx context.Context, table string, row map[string]any) (map[string]any, error) {
	stored := make(map[string]any, len(row)+1)
	for k, v := range row {
		stored[k] = v
	}

	id, ok := stored["id"].(string)
	if !ok || id == "" {
		id = uuid.New().String()
		stored["id"] = id
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, storage.NewStoreError("Insert", table, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (tbl, id, data) VALUES ($1, $2, $3)`,
		table, id, data)
	if err != nil {
		return nil, storage.NewStoreError("Insert", table, err)
	}

	return stored, nil
}

// Update merges the patch into every row matching the filter.
func (s *Store) Update(ctx context.Context, table string, patch map[string]any, filter storage.Filter) error {
	rows, err := s.readTable(ctx, table)
	if err != nil {
		return storage.NewStoreError("Update", table, err)
	}

	var ids []string

	for _, row := range rows {
		if filter.Matches(row) {
			if id, ok := row["id"].(string); ok {
				ids = append(ids, id)
			}
		}
	}

	if len(ids) == 0 {
		return nil
	}

	encoded, err := json.Marshal(patch)
	if err != nil {
		return storage.NewStoreError("Update", table, err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE records SET data = data || $1, updated_at = NOW() WHERE tbl = $2 AND id = ANY($3)`,
		encoded, table, pq.Array(ids))
	if err != nil {
		return storage.NewStoreError("Update", table, err)
	}

	return nil
}

// Select returns the rows matching the filter, honoring its limit. Operator
// conditions are applied client-side so filter semantics stay identical
// across store implementations.
func (s *Store) Select(ctx context.Context, table string, filter storage.Filter) ([]map[string]any, error) {
	rows, err := s.readTable(ctx, table)
	if err != nil {
		return nil, storage.NewStoreError("Select", table, err)
	}

	var results []map[string]any

	for _, row := range rows {
		if !filter.Matches(row) {
			continue
		}

		results = append(results, row)

		if filter.Limit > 0 && len(results) >= filter.Limit {
			break
		}
	}

	return results, nil
}

func (s *Store) readTable(ctx context.Context, table string) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM records WHERE tbl = $1 ORDER BY created_at`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []map[string]any

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}

		var row map[string]any
		if err := json.Unmarshal(data, &row); err != nil {
			return nil, err
		}

		results = append(results, row)
	}

	return results, rows.Err()
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}
