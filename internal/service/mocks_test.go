package service

import (
	"context"
	"io"

	"github.com/paperchat-ai/paperchat/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockEmbeddingClient is a mock implementation of EmbeddingClient
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

// MockGenerationClient is a mock implementation of GenerationClient
type MockGenerationClient struct {
	mock.Mock
}

func (m *MockGenerationClient) Complete(ctx context.Context, turns []domain.ConversationTurn) (string, error) {
	args := m.Called(ctx, turns)
	return args.String(0), args.Error(1)
}

func (m *MockGenerationClient) StreamComplete(ctx context.Context, turns []domain.ConversationTurn) (TokenStream, error) {
	args := m.Called(ctx, turns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(TokenStream), args.Error(1)
}

// fakeTokenStream replays a fixed token sequence, then the final error
// (io.EOF for a clean finish).
type fakeTokenStream struct {
	tokens   []string
	finalErr error
	pos      int
	closed   bool
}

func newFakeTokenStream(tokens ...string) *fakeTokenStream {
	return &fakeTokenStream{tokens: tokens, finalErr: io.EOF}
}

func (s *fakeTokenStream) Recv() (string, error) {
	if s.pos >= len(s.tokens) {
		return "", s.finalErr
	}
	token := s.tokens[s.pos]
	s.pos++
	return token, nil
}

func (s *fakeTokenStream) Close() error {
	s.closed = true
	return nil
}

// blockingTokenStream yields its tokens, then blocks until the context is
// cancelled, the way a live backend stream behaves mid-generation.
type blockingTokenStream struct {
	ctx    context.Context
	tokens []string
	pos    int
	closed bool
}

func (s *blockingTokenStream) Recv() (string, error) {
	if s.pos < len(s.tokens) {
		token := s.tokens[s.pos]
		s.pos++
		return token, nil
	}
	<-s.ctx.Done()
	return "", s.ctx.Err()
}

func (s *blockingTokenStream) Close() error {
	s.closed = true
	return nil
}

// fakeBackendFactory hands out fixed clients and records the credential it
// was asked for.
type fakeBackendFactory struct {
	embeddings EmbeddingClient
	generation GenerationClient
	lastAPIKey string
}

func (f *fakeBackendFactory) Embeddings(apiKey string) EmbeddingClient {
	f.lastAPIKey = apiKey
	return f.embeddings
}

func (f *fakeBackendFactory) Generation(apiKey string) GenerationClient {
	f.lastAPIKey = apiKey
	return f.generation
}

// MockUUIDGenerator returns queued ids in order
type MockUUIDGenerator struct {
	uuids []string
	index int
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	if m.index >= len(m.uuids) {
		return "uuid-overflow"
	}
	id := m.uuids[m.index]
	m.index++
	return id
}

// identityEmbeddings returns one-hot vectors so retrieval order in tests is
// fully determined by the query vector.
func identityEmbeddings(n, dim int) [][]float32 {
	vectors := make([][]float32, n)
	for i := range vectors {
		v := make([]float32, dim)
		v[i%dim] = 1
		vectors[i] = v
	}
	return vectors
}
