package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/paperchat-ai/paperchat/internal/domain"
	"github.com/paperchat-ai/paperchat/internal/telemetry"
)

// UUIDGenerator generates opaque document identifiers
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// IngestService builds a document session from decoded page text: chunk,
// embed, store. Any failure aborts before the session is created; a
// half-built session is never stored.
type IngestService struct {
	embeddings *EmbeddingService
	store      SessionStore
	uuidGen    UUIDGenerator
	chunkCfg   ChunkConfig
}

// NewIngestService creates a new IngestService instance.
func NewIngestService(embeddings *EmbeddingService, store SessionStore, uuidGen UUIDGenerator, chunkCfg ChunkConfig) *IngestService {
	return &IngestService{
		embeddings: embeddings,
		store:      store,
		uuidGen:    uuidGen,
		chunkCfg:   chunkCfg,
	}
}

// IngestInput carries one decoded document into the pipeline. APIKey is the
// caller's backend credential, forwarded and never retained.
type IngestInput struct {
	APIKey   string
	Filename string
	Pages    []string
}

// IngestOutput reports the created session and what the caller must keep.
type IngestOutput struct {
	Ticket     SessionTicket
	Filename   string
	PageCount  int
	ChunkCount int
}

// Ingest runs the full pipeline for one document: chunk the pages, embed
// every chunk, construct the session and hand it to the session store.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*IngestOutput, error) {
	documentID := s.uuidGen.NewString()

	ctx, span := telemetry.StartSpan(ctx, "IngestService.Ingest", telemetry.SpanAttributes{
		DocumentID: documentID,
		PageCount:  len(input.Pages),
		Operation:  "ingest",
	})
	defer span.End()

	chunks, err := ChunkPages(documentID, input.Pages, s.chunkCfg)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.embeddings.EmbedTexts(ctx, input.APIKey, texts)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	session, err := domain.NewDocumentSession(documentID, input.Filename, len(input.Pages), chunks, vectors)
	if err != nil {
		return nil, err
	}

	ticket, err := s.store.Create(ctx, session)
	if err != nil {
		return nil, err
	}

	return &IngestOutput{
		Ticket:     ticket,
		Filename:   input.Filename,
		PageCount:  session.PageCount,
		ChunkCount: session.ChunkCount(),
	}, nil
}
