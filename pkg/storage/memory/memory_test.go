package memory

import (
	"context"
	"testing"

	"github.com/funilhq/funil/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_InsertAssignsID(t *testing.T) {
	store := NewStore()

	row, err := store.Insert(context.Background(), "tasks", map[string]any{"title": "Call Dana"})
	require.NoError(t, err)
	assert.NotEmpty(t, row["id"])
	assert.Equal(t, "Call Dana", row["title"])
}

func TestStore_SelectByEquality(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_, err := store.Insert(ctx, "leads", map[string]any{"id": "L1", "stage": "new"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, "leads", map[string]any{"id": "L2", "stage": "won"})
	require.NoError(t, err)

	rows, err := store.Select(ctx, "leads", storage.Where("stage", "won"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "L2", rows[0]["id"])
}

func TestStore_SelectNumericOperators(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for _, score := range []int{10, 50, 90} {
		_, err := store.Insert(ctx, "deals", map[string]any{"score": score})
		require.NoError(t, err)
	}

	rows, err := store.Select(ctx, "deals", storage.Filter{
		Conditions: []storage.Condition{{Field: "score", Operator: storage.OpGreaterThan, Value: 40}},
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = store.Select(ctx, "deals", storage.Filter{
		Conditions: []storage.Condition{{Field: "score", Operator: storage.OpLessThan, Value: 40}},
	})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestStore_SelectHonorsLimit(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for range 5 {
		_, err := store.Insert(ctx, "tasks", map[string]any{"done": false})
		require.NoError(t, err)
	}

	rows, err := store.Select(ctx, "tasks", storage.Filter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestStore_UpdateMergesPatch(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_, err := store.Insert(ctx, "deals", map[string]any{"id": "D1", "status": "open", "amount": 100})
	require.NoError(t, err)

	err = store.Update(ctx, "deals", map[string]any{"status": "won"}, storage.Where("id", "D1"))
	require.NoError(t, err)

	rows, err := store.Select(ctx, "deals", storage.Where("id", "D1"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "won", rows[0]["status"])
	assert.Equal(t, 100, rows[0]["amount"])
}

func TestStore_SelectReturnsCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_, err := store.Insert(ctx, "leads", map[string]any{"id": "L1", "stage": "new"})
	require.NoError(t, err)

	rows, err := store.Select(ctx, "leads", storage.Where("id", "L1"))
	require.NoError(t, err)
	rows[0]["stage"] = "mutated"

	again, err := store.Select(ctx, "leads", storage.Where("id", "L1"))
	require.NoError(t, err)
	assert.Equal(t, "new", again[0]["stage"])
}
