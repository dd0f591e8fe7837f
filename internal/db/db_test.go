package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/vscode-pull-request-github-sub005/internal/pagination"
)

func openTestDB(t *testing.T) Database {
	t.Helper()

	database, err := Open(OpenOptions{Path: ":memory:", AutoMigrate: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	return database
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(OpenOptions{})
	require.ErrorIs(t, err, ErrEmptyPath)
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	database, err := Open(OpenOptions{Path: path, AutoMigrate: true})
	require.NoError(t, err)
	require.NoError(t, database.Close())

	assert.FileExists(t, path)
}

func TestStateStoreRoundtrip(t *testing.T) {
	stateStore := NewStateStore(openTestDB(t))

	store := pagination.NewCursorStore()
	store.Update(pagination.Cursor{
		Key:     pagination.CursorKey{SourceID: "acme/widget", QueryID: "all"},
		Page:    3,
		HasMore: pagination.HasMoreYes,
	})
	store.Update(pagination.Cursor{
		Key:     pagination.CursorKey{SourceID: "acme/gadget", QueryID: "all"},
		Page:    1,
		HasMore: pagination.HasMoreNo,
	})
	store.SetProgressIfUnset("all", 4)

	require.NoError(t, stateStore.Save(store))

	restored := pagination.NewCursorStore()
	require.NoError(t, stateStore.Load(restored))

	cur := restored.Get("acme/widget", "all")
	assert.Equal(t, 3, cur.Page)
	assert.Equal(t, pagination.HasMoreYes, cur.HasMore)

	cur = restored.Get("acme/gadget", "all")
	assert.Equal(t, 1, cur.Page)
	assert.Equal(t, pagination.HasMoreNo, cur.HasMore)

	pages, ok := restored.Progress("all")
	require.True(t, ok)
	assert.Equal(t, 4, pages)
}

func TestStateStoreSaveIsUpsert(t *testing.T) {
	stateStore := NewStateStore(openTestDB(t))

	store := pagination.NewCursorStore()
	store.Update(pagination.Cursor{
		Key:     pagination.CursorKey{SourceID: "acme/widget", QueryID: "all"},
		Page:    1,
		HasMore: pagination.HasMoreYes,
	})
	store.SetProgressIfUnset("all", 1)

	require.NoError(t, stateStore.Save(store))

	store.Update(pagination.Cursor{
		Key:     pagination.CursorKey{SourceID: "acme/widget", QueryID: "all"},
		Page:    2,
		HasMore: pagination.HasMoreNo,
	})
	store.AddProgress("all", 1)

	require.NoError(t, stateStore.Save(store))

	restored := pagination.NewCursorStore()
	require.NoError(t, stateStore.Load(restored))

	cur := restored.Get("acme/widget", "all")
	assert.Equal(t, 2, cur.Page)
	assert.Equal(t, pagination.HasMoreNo, cur.HasMore)

	pages, ok := restored.Progress("all")
	require.True(t, ok)
	assert.Equal(t, 2, pages)
}
