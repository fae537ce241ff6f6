package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, FileName), store.Path())
}

func TestStore_InsertListOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Insert(ctx, []domain.EmbeddedChunk{
		{ID: "1", DocumentID: "d", Content: "first", Embedding: []float32{1, 0}},
		{ID: "2", DocumentID: "d", Content: "second", Embedding: []float32{0, 1}},
	}))
	require.NoError(t, store.Insert(ctx, []domain.EmbeddedChunk{
		{DocumentID: "e", Content: "third", Embedding: []float32{1, 1}},
	}))

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"first", "second", "third"},
		[]string{all[0].Content, all[1].Content, all[2].Content})
	assert.NotEmpty(t, all[2].ID)
	assert.Equal(t, []float32{1, 0}, all[0].Embedding)

	two, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestStore_Match(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Insert(ctx, []domain.EmbeddedChunk{
		{ID: "a", Content: "a", Embedding: []float32{1, 0}},
		{ID: "b", Content: "b", Embedding: []float32{0.8, 0.6}},
		{ID: "c", Content: "c", Embedding: []float32{0, 1}},
	}))

	matched, err := store.Match(ctx, []float32{1, 0}, 0.7, 5)

	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, "a", matched[0].ID)
	assert.Equal(t, "b", matched[1].ID)
	assert.InDelta(t, 0.8, matched[1].Similarity, 1e-6)
}

func TestStore_Reopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Insert(ctx, []domain.EmbeddedChunk{{ID: "x", Content: "kept", Embedding: []float32{1}}}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	chunks, err := reopened.List(ctx, 5)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "kept", chunks[0].Content)
}
