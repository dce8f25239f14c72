// Package memory provides an in-memory record store used by tests and
// single-process deployments.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/funilhq/funil/pkg/storage"
	"github.com/google/uuid"
)

// Store implements storage.RecordStore with mutex-protected maps.
type Store struct {
	mu     sync.RWMutex
	tables map[string][]map[string]any
}

func NewStore() *Store {
	return &Store{
		tables: make(map[string][]map[string]any),
	}
}

// Insert appends a copy of the row, assigning an id when absent.
func (s *Store) Insert(_ context.Context, table string, row map[string]any) (map[string]any, error) {
	stored := maps.Clone(row)
	if stored == nil {
		stored = make(map[string]any)
	}

	if _, ok := stored["id"]; !ok {
		stored["id"] = uuid.New().String()
	}

	s.mu.Lock()
	s.tables[table] = append(s.tables[table], stored)
	s.mu.Unlock()

	return maps.Clone(stored), nil
}

// Update merges the patch into every row matching the filter.
func (s *Store) Update(_ context.Context, table string, patch map[string]any, filter storage.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.tables[table] {
		if filter.Matches(row) {
			maps.Copy(row, patch)
		}
	}

	return nil
}

// Select returns copies of the matching rows, honoring the filter's limit.
func (s *Store) Select(_ context.Context, table string, filter storage.Filter) ([]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []map[string]any

	for _, row := range s.tables[table] {
		if !filter.Matches(row) {
			continue
		}

		results = append(results, maps.Clone(row))

		if filter.Limit > 0 && len(results) >= filter.Limit {
			break
		}
	}

	return results, nil
}

func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}
