package service

import (
	"math"
	"sort"

	"github.com/paperchat-ai/paperchat/internal/domain"
)

// CosineSimilarity computes the cosine similarity between two vectors.
// A zero-norm vector (embedding of empty text) scores 0 against everything
// rather than dividing by zero. Mismatched lengths compare the shared prefix.
func CosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// Retrieve scans the candidate chunks linearly, ranks them by cosine
// similarity against the query vector and returns the top k with scores
// clamped to [0,1]. Ties keep original chunk order (stable sort), so
// repeated identical queries return identical results. k is clamped to the
// candidate count; an empty candidate set returns an empty result, not an
// error.
//
// The scan is linear; documents top out at a few thousand chunks.
func Retrieve(query []float32, chunks []domain.Chunk, vectors [][]float32, k int) []domain.RetrievedChunk {
	if k <= 0 || len(chunks) == 0 {
		return []domain.RetrievedChunk{}
	}

	results := make([]domain.RetrievedChunk, len(chunks))
	for i := range chunks {
		results[i] = domain.RetrievedChunk{
			Chunk: chunks[i],
			Score: clampScore(CosineSimilarity(query, vectors[i])),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k]
}

// RetrieveFromSession runs Retrieve over a session's chunk/vector pairs.
func RetrieveFromSession(session *domain.DocumentSession, query []float32, k int) []domain.RetrievedChunk {
	return Retrieve(query, session.Chunks, session.Embeddings, k)
}

func clampScore(score float32) float32 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
