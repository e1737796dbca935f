package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, path
}

func TestTokenStore_SetGetClear(t *testing.T) {
	db, _ := openTestDB(t)
	store := NewTokenStore(db, nil)

	_, ok := store.Get()
	assert.False(t, ok, "new store should be empty")

	require.NoError(t, store.Set("first"))
	require.NoError(t, store.Set("second"))
	token, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "second", token, "set replaces the prior token")

	require.NoError(t, store.Clear())
	_, ok = store.Get()
	assert.False(t, ok)

	// Clearing an empty slot is a no-op.
	require.NoError(t, store.Clear())
	_, ok = store.Get()
	assert.False(t, ok)
}

func TestTokenStore_SurvivesReopen(t *testing.T) {
	db, path := openTestDB(t)
	require.NoError(t, NewTokenStore(db, nil).Set("persisted"))
	require.NoError(t, db.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	token, ok := NewTokenStore(reopened, nil).Get()
	require.True(t, ok)
	assert.Equal(t, "persisted", token)
}
