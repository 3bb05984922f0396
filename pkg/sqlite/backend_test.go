package sqlite_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/mesh-intelligence/pantry/pkg/sqlite"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewBackendLifecycle(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	clock := &types.FixedClock{T: time.Date(2025, 4, 28, 9, 0, 0, 0, time.UTC)}
	lc := types.NewLifecycle(types.WithClock(clock),
		types.WithCalendar(types.LocalCalendar{Location: time.UTC}))

	backend := sqlite.NewBackend(sqlite.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, backend.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir}))

	items, err := backend.Items()
	require.NoError(t, err)

	milk := lc.Create("Milk", clock.T.AddDate(0, 0, 10), types.WithCategory("dairy"))
	id, err := items.Save(milk)
	require.NoError(t, err)

	lc.MarkAsOpened(milk)
	_, err = items.Save(milk)
	require.NoError(t, err)
	require.NoError(t, backend.Detach())

	_, err = os.Stat(filepath.Join(dataDir, "items.jsonl"))
	require.NoError(t, err)

	reopened := sqlite.NewBackend()
	require.NoError(t, reopened.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir}))
	defer reopened.Detach()

	items, err = reopened.Items()
	require.NoError(t, err)
	got, err := items.Load(id)
	require.NoError(t, err)

	assert.True(t, got.IsOpened)
	assert.True(t, got.ExpirationDate.Equal(clock.T.AddDate(0, 0, 7)))
	assert.True(t, got.OriginalExpirationDate.Equal(clock.T.AddDate(0, 0, 10)))
}

func TestNewBackendDetached(t *testing.T) {
	backend := sqlite.NewBackend()
	_, err := backend.Items()
	assert.ErrorIs(t, err, types.ErrPantryDetached)
}
