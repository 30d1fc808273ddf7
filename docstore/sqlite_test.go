package docstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLiteBackend_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	ctx := context.Background()

	backend, err := NewSQLiteBackend(path)
	require.NoError(t, err)
	require.NoError(t, backend.Put(ctx, "clients", "c1", map[string]any{"id": "c1", "name": "n"}))
	require.NoError(t, backend.Close())

	// Reopening re-runs migrations; an up-to-date schema is not an error.
	backend, err = NewSQLiteBackend(path)
	require.NoError(t, err)
	defer backend.Close()

	doc, err := backend.Get(ctx, "clients", "c1")
	require.NoError(t, err)
	require.Equal(t, "n", doc["name"])
}

func TestSQLiteBackend_GetNotFound(t *testing.T) {
	backend, err := NewSQLiteBackend(":memory:")
	require.NoError(t, err)
	defer backend.Close()

	_, err = backend.Get(context.Background(), "clients", "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteBackend_FindByHash(t *testing.T) {
	backend, err := NewSQLiteBackend(":memory:")
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()

	require.NoError(t, backend.Put(ctx, "clients", "a", map[string]any{"id": "a", "emailHash": "d1"}))
	require.NoError(t, backend.Put(ctx, "clients", "b", map[string]any{"id": "b", "emailHash": "d2"}))
	require.NoError(t, backend.Put(ctx, "tasks", "c", map[string]any{"id": "c", "emailHash": "d1"}))

	docs, err := backend.FindByHash(ctx, "clients", "emailHash", "d1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "a", docs[0]["id"])

	// Documents without the field simply never match.
	docs, err = backend.FindByHash(ctx, "clients", "phoneHash", "d1")
	require.NoError(t, err)
	require.Empty(t, docs)
}

func TestSQLiteBackend_CollectionsIsolated(t *testing.T) {
	backend, err := NewSQLiteBackend(":memory:")
	require.NoError(t, err)
	defer backend.Close()
	ctx := context.Background()

	require.NoError(t, backend.Put(ctx, "clients", "x", map[string]any{"id": "x"}))
	require.NoError(t, backend.Put(ctx, "tasks", "x", map[string]any{"id": "x"}))

	require.NoError(t, backend.ReplaceAll(ctx, "clients", nil))

	docs, err := backend.List(ctx, "tasks")
	require.NoError(t, err)
	require.Len(t, docs, 1, "replace-all must not touch other collections")
}
