package service

import (
	"testing"

	"github.com/paperchat-ai/paperchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors score 1", func(t *testing.T) {
		v := []float32{0.5, 0.3, 0.2}
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-6)
	})

	t.Run("orthogonal vectors score 0", func(t *testing.T) {
		a := []float32{1, 0}
		b := []float32{0, 1}
		assert.InDelta(t, 0.0, CosineSimilarity(a, b), 1e-6)
	})

	t.Run("opposite vectors score -1", func(t *testing.T) {
		a := []float32{1, 0}
		b := []float32{-1, 0}
		assert.InDelta(t, -1.0, CosineSimilarity(a, b), 1e-6)
	})

	t.Run("zero-norm vector scores 0", func(t *testing.T) {
		a := []float32{0, 0, 0}
		b := []float32{1, 2, 3}
		assert.Equal(t, float32(0), CosineSimilarity(a, b))
		assert.Equal(t, float32(0), CosineSimilarity(b, a))
	})

	t.Run("scale invariant", func(t *testing.T) {
		a := []float32{1, 2, 3}
		b := []float32{10, 20, 30}
		assert.InDelta(t, 1.0, CosineSimilarity(a, b), 1e-6)
	})
}

func testChunks(n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{ID: string(rune('a' + i)), Page: 1, ChunkIndex: i, TotalChunks: n}
	}
	return chunks
}

func TestRetrieve(t *testing.T) {
	t.Run("ranks by similarity descending", func(t *testing.T) {
		chunks := testChunks(3)
		vectors := [][]float32{
			{0, 1, 0},
			{1, 0, 0},
			{0.7, 0.7, 0},
		}
		query := []float32{1, 0, 0}

		results := Retrieve(query, chunks, vectors, 3)
		require.Len(t, results, 3)
		assert.Equal(t, "b", results[0].Chunk.ID)
		assert.Equal(t, "c", results[1].Chunk.ID)
		assert.Equal(t, "a", results[2].Chunk.ID)
		assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	})

	t.Run("k clamps to candidate count", func(t *testing.T) {
		chunks := testChunks(2)
		vectors := identityEmbeddings(2, 3)
		results := Retrieve([]float32{1, 0, 0}, chunks, vectors, 10)
		assert.Len(t, results, 2)
	})

	t.Run("returns top k only", func(t *testing.T) {
		chunks := testChunks(5)
		vectors := identityEmbeddings(5, 5)
		results := Retrieve([]float32{1, 0, 0, 0, 0}, chunks, vectors, 2)
		require.Len(t, results, 2)
		assert.Equal(t, "a", results[0].Chunk.ID)
	})

	t.Run("ties keep original chunk order", func(t *testing.T) {
		chunks := testChunks(4)
		same := []float32{1, 0}
		vectors := [][]float32{same, same, same, same}

		results := Retrieve([]float32{1, 0}, chunks, vectors, 4)
		require.Len(t, results, 4)
		for i, r := range results {
			assert.Equal(t, chunks[i].ID, r.Chunk.ID)
		}
	})

	t.Run("repeated queries are deterministic", func(t *testing.T) {
		chunks := testChunks(6)
		vectors := identityEmbeddings(6, 4)
		query := []float32{0.5, 0.5, 0, 0}

		first := Retrieve(query, chunks, vectors, 3)
		second := Retrieve(query, chunks, vectors, 3)
		assert.Equal(t, first, second)
	})

	t.Run("negative similarity clamps to 0", func(t *testing.T) {
		chunks := testChunks(1)
		vectors := [][]float32{{-1, 0}}
		results := Retrieve([]float32{1, 0}, chunks, vectors, 1)
		require.Len(t, results, 1)
		assert.Equal(t, float32(0), results[0].Score)
	})

	t.Run("empty candidates return empty result", func(t *testing.T) {
		results := Retrieve([]float32{1}, nil, nil, 5)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("non-positive k returns empty result", func(t *testing.T) {
		chunks := testChunks(2)
		vectors := identityEmbeddings(2, 2)
		assert.Empty(t, Retrieve([]float32{1, 0}, chunks, vectors, 0))
	})
}

func TestRetrieveFromSession(t *testing.T) {
	chunks := testChunks(3)
	vectors := identityEmbeddings(3, 3)
	session, err := domain.NewDocumentSession("doc-1", "doc.pdf", 1, chunks, vectors)
	require.NoError(t, err)

	results := RetrieveFromSession(session, []float32{0, 1, 0}, 1)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Chunk.ID)
}
