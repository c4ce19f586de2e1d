package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartsift/chartsift/internal/core/domain"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "embeddings.json")
	store, err := New(path, 0)
	require.NoError(t, err)
	return store, path
}

// TestStore_AddAndSearch tests that search ranks entries by cosine
// similarity, highest first, and carries metadata through.
func TestStore_AddAndSearch(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "exact", []float32{1, 0, 0}, map[string]string{"file_name": "visit.txt"}))
	require.NoError(t, store.Add(ctx, "close", []float32{0.9, 0.1, 0}, nil))
	require.NoError(t, store.Add(ctx, "orthogonal", []float32{0, 1, 0}, nil))

	hits, err := store.Search(ctx, []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "exact", hits[0].ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.Equal(t, "visit.txt", hits[0].Metadata["file_name"])

	assert.Equal(t, "close", hits[1].ID)
	assert.Greater(t, hits[1].Score, hits[2].Score)

	assert.Equal(t, "orthogonal", hits[2].ID)
	assert.InDelta(t, 0.0, hits[2].Score, 1e-9)
}

// TestSearch_ZeroVector tests that a zero-norm entry scores 0.0
// instead of producing NaN.
func TestSearch_ZeroVector(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "real", []float32{0.5, 0.5}, nil))
	require.NoError(t, store.Add(ctx, "empty", []float32{0, 0}, nil))

	hits, err := store.Search(ctx, []float32{1, 1}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "real", hits[0].ID)
	assert.Equal(t, "empty", hits[1].ID)
	assert.Equal(t, 0.0, hits[1].Score)
}

// TestSearch_TiesKeepInsertionOrder tests that equal scores preserve
// the order entries were added in.
func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "first", []float32{0, 1}, nil))
	require.NoError(t, store.Add(ctx, "second", []float32{0, 1}, nil))
	require.NoError(t, store.Add(ctx, "third", []float32{0, 1}, nil))

	hits, err := store.Search(ctx, []float32{0, 1}, 3)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second", "third"}, []string{hits[0].ID, hits[1].ID, hits[2].ID})
}

// TestSearch_K tests the k boundary behaviour.
func TestSearch_K(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "a", []float32{1, 0}, nil))
	require.NoError(t, store.Add(ctx, "b", []float32{0, 1}, nil))

	t.Run("k larger than store returns everything", func(t *testing.T) {
		hits, err := store.Search(ctx, []float32{1, 0}, 10)
		require.NoError(t, err)
		assert.Len(t, hits, 2)
	})

	t.Run("k zero returns nothing", func(t *testing.T) {
		hits, err := store.Search(ctx, []float32{1, 0}, 0)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}

// TestStore_WriteThroughReload tests that a new store over the same
// path sees everything a previous instance added.
func TestStore_WriteThroughReload(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "doc-1", []float32{1, 0, 0}, map[string]string{"path": "/tmp/a.pdf"}))
	require.NoError(t, store.Add(ctx, "doc-2", []float32{0, 1, 0}, nil))

	// Both artifacts exist on disk after the mutation, not just at
	// shutdown.
	_, err := os.Stat(path)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(path), "embeddings_metadata.json"))
	require.NoError(t, err)

	reloaded, err := New(path, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Len())
	assert.Equal(t, 3, reloaded.Dimensions())

	hits, err := reloaded.Search(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-1", hits[0].ID)
	assert.Equal(t, "/tmp/a.pdf", hits[0].Metadata["path"])
}

// TestAdd_Overwrite tests that re-adding an id replaces the vector
// without growing the store and keeps its insertion position.
func TestAdd_Overwrite(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "doc", []float32{1, 0}, nil))
	require.NoError(t, store.Add(ctx, "later", []float32{1, 0}, nil))
	require.NoError(t, store.Add(ctx, "doc", []float32{1, 0}, map[string]string{"updated": "yes"}))

	assert.Equal(t, 2, store.Len())

	hits, err := store.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "doc", hits[0].ID, "overwrite keeps original insertion position")
	assert.Equal(t, "yes", hits[0].Metadata["updated"])
}

// TestAdd_DimensionMismatch tests that the first vector fixes the
// store width and later widths are rejected.
func TestAdd_DimensionMismatch(t *testing.T) {
	ctx := context.Background()

	t.Run("inferred from first add", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, store.Add(ctx, "a", []float32{1, 0, 0}, nil))

		err := store.Add(ctx, "b", []float32{1, 0}, nil)
		require.ErrorIs(t, err, domain.ErrDimensionMismatch)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("fixed at construction", func(t *testing.T) {
		store, err := New(filepath.Join(t.TempDir(), "embeddings.json"), 4)
		require.NoError(t, err)
		assert.Equal(t, 4, store.Dimensions())

		err = store.Add(ctx, "a", []float32{1, 0}, nil)
		require.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})

	t.Run("query width checked", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, store.Add(ctx, "a", []float32{1, 0, 0}, nil))

		_, err := store.Search(ctx, []float32{1, 0}, 1)
		require.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})
}

// TestStore_Delete tests removal and that it persists.
func TestStore_Delete(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "keep", []float32{1, 0}, nil))
	require.NoError(t, store.Add(ctx, "drop", []float32{0, 1}, nil))

	found, err := store.Delete(ctx, "drop")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, store.Len())

	found, err = store.Delete(ctx, "drop")
	require.NoError(t, err)
	assert.False(t, found)

	reloaded, err := New(path, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Len())
}

// TestStore_Clear tests that clearing empties the persisted tables.
func TestStore_Clear(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "a", []float32{1, 0}, map[string]string{"k": "v"}))
	require.NoError(t, store.Clear(ctx))
	assert.Equal(t, 0, store.Len())

	reloaded, err := New(path, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Len())
}
