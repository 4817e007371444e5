package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multimodal-knowledge-assistant/internal/model"
)

func storeWith(t *testing.T, vectors ...[]float32) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	for i, vec := range vectors {
		chunk := &model.Chunk{
			DocumentID: "doc",
			ChunkIndex: i,
			TextChunk:  "chunk",
		}
		chunk.SetEmbedding(vec)
		require.NoError(t, store.Upsert(context.Background(), chunk))
	}
	return store
}

func TestSearchRanksByCosineSimilarity(t *testing.T) {
	// Query along the x axis: scores 1.0, ~0.707, 0.0 in corpus order 2,1,0.
	store := storeWith(t,
		[]float32{0, 1},
		[]float32{1, 1},
		[]float32{1, 0},
	)
	r := NewRetriever(store)

	results, err := r.Search(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, 2, results[0].ChunkIndex)
	assert.Equal(t, 1, results[1].ChunkIndex)
	assert.Equal(t, 0, results[2].ChunkIndex)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Greater(t, results[1].Score, results[2].Score)
}

func TestSearchTieBreakKeepsScanOrder(t *testing.T) {
	// Identical vectors produce identical scores; scan order must survive.
	store := NewMemoryStore()
	for i := 0; i < 4; i++ {
		chunk := &model.Chunk{DocumentID: "doc", ChunkIndex: i, TextChunk: "same"}
		chunk.SetEmbedding([]float32{1, 2, 3})
		require.NoError(t, store.Upsert(context.Background(), chunk))
	}
	r := NewRetriever(store)

	results, err := r.Search(context.Background(), []float32{1, 2, 3}, 4)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i, res := range results {
		assert.Equal(t, i, res.ChunkIndex)
	}
}

func TestSearchTopKBoundaries(t *testing.T) {
	store := storeWith(t, []float32{1, 0}, []float32{0, 1})
	r := NewRetriever(store)
	ctx := context.Background()

	empty, err := r.Search(ctx, []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)

	negative, err := r.Search(ctx, []float32{1, 0}, -3)
	require.NoError(t, err)
	assert.Empty(t, negative)

	all, err := r.Search(ctx, []float32{1, 0}, 100)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSearchEmptyCorpus(t *testing.T) {
	r := NewRetriever(NewMemoryStore())
	results, err := r.Search(context.Background(), []float32{1, 2, 3}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchZeroVectorRanksLast(t *testing.T) {
	store := storeWith(t,
		[]float32{0, 0},
		[]float32{-1, 0}, // negative similarity, still finite
	)
	r := NewRetriever(store)

	results, err := r.Search(context.Background(), []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].ChunkIndex)
	assert.Equal(t, 0, results[1].ChunkIndex)
}

func TestSearchAllZeroVectorsReturnsEmpty(t *testing.T) {
	store := storeWith(t, []float32{0, 0}, []float32{0, 0})
	r := NewRetriever(store)

	results, err := r.Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchDimensionMismatchFails(t *testing.T) {
	store := storeWith(t, []float32{1, 0}, []float32{1, 0, 0})
	r := NewRetriever(store)

	_, err := r.Search(context.Background(), []float32{1, 0}, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

type failingSource struct{}

func (failingSource) ScanAll(context.Context) ([]model.Chunk, error) {
	return nil, errors.New("connection refused")
}

func TestSearchStoreErrorPropagates(t *testing.T) {
	r := NewRetriever(failingSource{})
	_, err := r.Search(context.Background(), []float32{1}, 5)
	assert.Error(t, err)
}

func TestMemoryStoreUpsertReplacesRow(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := &model.Chunk{DocumentID: "d1", ChunkIndex: 0, TextChunk: "old"}
	first.SetEmbedding([]float32{1, 2})
	require.NoError(t, store.Upsert(ctx, first))

	second := &model.Chunk{DocumentID: "d1", ChunkIndex: 0, TextChunk: "new"}
	second.SetEmbedding([]float32{3, 4})
	require.NoError(t, store.Upsert(ctx, second))

	chunks, err := store.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "new", chunks[0].TextChunk)
	assert.Equal(t, []float32{3, 4}, chunks[0].EmbeddingVector())
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	chunk := &model.Chunk{DocumentID: "doc-9", ChunkIndex: 3, TextChunk: "payload"}
	chunk.SetEmbedding([]float32{0.25, -1.5, 3.125})
	require.NoError(t, store.Upsert(ctx, chunk))

	chunks, err := store.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "doc-9", chunks[0].DocumentID)
	assert.Equal(t, 3, chunks[0].ChunkIndex)
	assert.Equal(t, "payload", chunks[0].TextChunk)
	assert.Equal(t, []float32{0.25, -1.5, 3.125}, chunks[0].EmbeddingVector())
}
