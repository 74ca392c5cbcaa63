package service

import (
	"context"
	"fmt"

	"github.com/paperchat-ai/paperchat/internal/domain"
)

// DefaultEmbedBatchSize caps the number of texts sent to the embedding
// backend per call. A tunable latency knob, not a correctness constraint.
const DefaultEmbedBatchSize = 100

// EmbeddingClient defines the interface for generating embeddings.
// The returned vectors are index-aligned with the input texts.
type EmbeddingClient interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// GenerationClient defines the interface for the text generation backend.
type GenerationClient interface {
	Complete(ctx context.Context, turns []domain.ConversationTurn) (string, error)
	StreamComplete(ctx context.Context, turns []domain.ConversationTurn) (TokenStream, error)
}

// TokenStream yields generated tokens in arrival order. Recv returns io.EOF
// when the backend signals completion.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}

// BackendFactory builds backend clients bound to a caller-provided
// credential. The credential is forwarded verbatim and never retained.
type BackendFactory interface {
	Embeddings(apiKey string) EmbeddingClient
	Generation(apiKey string) GenerationClient
}

// EmbeddingService turns texts into vectors, batching calls to the backend.
type EmbeddingService struct {
	factory   BackendFactory
	batchSize int
}

// NewEmbeddingService creates a new EmbeddingService instance.
func NewEmbeddingService(factory BackendFactory, batchSize int) *EmbeddingService {
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}
	return &EmbeddingService{
		factory:   factory,
		batchSize: batchSize,
	}
}

// EmbedTexts embeds the given texts, index-aligned with the input. Large
// inputs are split into batches transparently. Any backend failure aborts
// the whole call; partial embedding sets are never returned.
func (s *EmbeddingService) EmbedTexts(ctx context.Context, apiKey string, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	client := s.factory.Embeddings(apiKey)
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := client.CreateEmbeddings(ctx, texts[start:end])
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeEmbeddingBackend, "failed to generate embeddings", err)
		}
		if len(batch) != end-start {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeEmbeddingBackend, "embedding backend returned misaligned batch",
				fmt.Errorf("expected %d vectors, got %d", end-start, len(batch)))
		}

		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

// EmbedQuery embeds a single query text. It reuses the exact chunk embedding
// path so query and chunk vectors live in the same space.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, apiKey, text string) ([]float32, error) {
	vectors, err := s.EmbedTexts(ctx, apiKey, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
