// Tests for items.jsonl persistence in the SQLite backend.
package sqlite

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestJSONLInitializedEmpty(t *testing.T) {
	b, _ := setupBackend(t, types.SQLiteConfig{})

	info, err := os.Stat(filepath.Join(b.DataDir(), itemsJSONL))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestJSONLExistingFileNotTruncated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, itemsJSONL)
	line := `{"item_id":"a","name":"Tea","expiration_date":"2025-05-01T00:00:00Z","original_expiration_date":"2025-05-01T00:00:00Z","category":"pantry","storage_location":"Shelf","is_opened":false,"is_partially_consumed":false,"created_at":"2025-04-01T00:00:00Z","updated_at":"2025-04-01T00:00:00Z"}`
	require.NoError(t, os.WriteFile(path, []byte(line+"\n"), 0o644))

	require.NoError(t, initJSONLFile(path))

	assert.Equal(t, []string{line}, readLines(t, path))
}

func TestJSONLSaveAndDeletePersisted(t *testing.T) {
	b, items := setupBackend(t, types.SQLiteConfig{})
	path := filepath.Join(b.DataDir(), itemsJSONL)

	first := types.NewItem("Milk", baseTime.AddDate(0, 0, 10), baseTime, types.WithCategory("dairy"))
	second := types.NewItem("Bread", baseTime.AddDate(0, 0, 3), baseTime.Add(time.Minute))
	_, err := items.Save(first)
	require.NoError(t, err)
	_, err = items.Save(second)
	require.NoError(t, err)

	lines := readLines(t, path)
	require.Len(t, lines, 2)

	// Records are written in creation order, one compact object per line.
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, first.ItemID, rec["item_id"])
	assert.Equal(t, "dairy", rec["category"])
	assert.NotContains(t, lines[0], "\n  ")

	first.MarkAsOpened(baseTime.Add(time.Hour), utcCal)
	_, err = items.Save(first)
	require.NoError(t, err)
	lines = readLines(t, path)
	require.Len(t, lines, 2)
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, true, rec["is_opened"])

	require.NoError(t, items.Delete(first.ItemID))
	lines = readLines(t, path)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], second.ItemID)
}

func TestJSONLAttachSkipsBadRecords(t *testing.T) {
	dir := t.TempDir()
	good := `{"item_id":"good-1","name":"Rice","expiration_date":"2026-01-01T00:00:00Z","original_expiration_date":"2026-01-01T00:00:00Z","category":"pantry","storage_location":"Cupboard","is_opened":false,"is_partially_consumed":false,"created_at":"2025-01-01T00:00:00Z","updated_at":"2025-01-01T00:00:00Z","shelf":"top"}`
	content := strings.Join([]string{
		good,
		"",
		"{not json",
		`{"name":"No ID"}`,
		`{"item_id":"bad-date","expiration_date":"tomorrow"}`,
		"   ",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, itemsJSONL), []byte(content), 0o644))

	core, logs := observer.New(zap.WarnLevel)
	b := NewBackend(WithLogger(zap.New(core)))
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	defer b.Detach()

	items, err := b.Items()
	require.NoError(t, err)
	all, err := items.Query(types.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "good-1", all[0].ItemID)
	assert.Equal(t, "Rice", all[0].Name)

	entries := logs.FilterMessage("skipped unreadable item records").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 3, entries[0].ContextMap()["skipped"])
}

func TestJSONLLastDuplicateWins(t *testing.T) {
	dir := t.TempDir()
	rec := func(name string) string {
		return `{"item_id":"dup","name":"` + name + `","expiration_date":"2026-01-01T00:00:00Z","original_expiration_date":"2026-01-01T00:00:00Z","category":"pantry","storage_location":"Cupboard","is_opened":false,"is_partially_consumed":false,"created_at":"2025-01-01T00:00:00Z","updated_at":"2025-01-01T00:00:00Z"}`
	}
	content := rec("Old") + "\n" + rec("New") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, itemsJSONL), []byte(content), 0o644))

	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	defer b.Detach()

	items, err := b.Items()
	require.NoError(t, err)
	got, err := items.Load("dup")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
}

func TestWriteJSONLAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, itemsJSONL)
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	records := []json.RawMessage{
		json.RawMessage(`{"item_id":"1"}`),
		json.RawMessage(`{"item_id":"2"}`),
	}
	require.NoError(t, writeJSONL(path, records))

	assert.Equal(t, []string{`{"item_id":"1"}`, `{"item_id":"2"}`}, readLines(t, path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must not be left behind")
	assert.Equal(t, itemsJSONL, entries[0].Name())
}

func TestReadJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"a\":1}\n\n[1,2]\nnope\n  {\"b\":2}  \n"), 0o644))

	records, skipped, err := readJSONL(path)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, records, 3)
	assert.JSONEq(t, `{"b":2}`, string(records[2]))

	_, _, err = readJSONL(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}
