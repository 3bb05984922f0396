// Tests for loading items.jsonl into SQLite, including forward
// compatibility with fields this version does not know about.
package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

func openTestDB(t *testing.T) (string, func() (*types.Item, error)) {
	t.Helper()
	dir := t.TempDir()
	db, err := openDB(filepath.Join(dir, dbFileName))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	path := filepath.Join(dir, itemsJSONL)
	load := func() (*types.Item, error) {
		skipped, err := loadItemsJSONL(db, path)
		if err != nil {
			return nil, err
		}
		require.Zero(t, skipped)
		return scanItem(db.QueryRow("SELECT " + itemColumns + " FROM items LIMIT 1"))
	}
	return path, load
}

func TestLoadJSONLUnknownFields(t *testing.T) {
	path, load := openTestDB(t)
	record := `{"item_id":"f1","name":"Kefir","expiration_date":"2025-06-01T08:00:00Z","original_expiration_date":"2025-06-10T08:00:00Z","opened_date":"2025-05-25T08:00:00Z","category":"dairy","storage_location":"Fridge","is_opened":true,"is_partially_consumed":true,"remaining_quantity":0.4,"notes":"half","created_at":"2025-05-20T08:00:00Z","updated_at":"2025-05-26T08:00:00Z","barcode":"4006381333931","tags":["fermented"]}`
	require.NoError(t, os.WriteFile(path, []byte(record+"\n"), 0o644))

	item, err := load()
	require.NoError(t, err)

	assert.Equal(t, "f1", item.ItemID)
	assert.Equal(t, "Kefir", item.Name)
	assert.True(t, item.IsOpened)
	assert.True(t, item.IsPartiallyConsumed)
	require.NotNil(t, item.OpenedDate)
	require.NotNil(t, item.RemainingQuantity)
	assert.InDelta(t, 0.4, *item.RemainingQuantity, 1e-9)
	require.NotNil(t, item.Notes)
	assert.Equal(t, "half", *item.Notes)
	assert.Nil(t, item.LastConsumedDate)
}

func TestLoadJSONLMissingOptionalFields(t *testing.T) {
	path, load := openTestDB(t)
	record := `{"item_id":"m1","name":"Oats","expiration_date":"2026-01-01T00:00:00Z","original_expiration_date":"2026-01-01T00:00:00Z","category":"pantry","storage_location":"Cupboard","created_at":"2025-01-01T00:00:00Z","updated_at":"2025-01-01T00:00:00Z"}`
	require.NoError(t, os.WriteFile(path, []byte(record+"\n"), 0o644))

	item, err := load()
	require.NoError(t, err)

	assert.False(t, item.IsOpened)
	assert.False(t, item.IsPartiallyConsumed)
	assert.Nil(t, item.OpenedDate)
	assert.Nil(t, item.RemainingQuantity)
	assert.Nil(t, item.Notes)
	assert.Equal(t, 100.0, item.RemainingPercent())
}

func TestLoadJSONLEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, itemsJSONL)
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	db, err := openDB(filepath.Join(dir, dbFileName))
	require.NoError(t, err)
	defer db.Close()

	skipped, err := loadItemsJSONL(db, path)
	require.NoError(t, err)
	assert.Zero(t, skipped)
}

func TestLoadJSONLMissingFile(t *testing.T) {
	db, err := openDB(filepath.Join(t.TempDir(), dbFileName))
	require.NoError(t, err)
	defer db.Close()

	_, err = loadItemsJSONL(db, filepath.Join(t.TempDir(), itemsJSONL))
	assert.Error(t, err)
}
