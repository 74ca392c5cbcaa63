package domain

import "time"

// DocumentSession aggregates the chunks and embeddings derived from one
// uploaded document. It owns its chunks and vectors exclusively; a re-upload
// builds a fresh session rather than mutating an existing one.
type DocumentSession struct {
	DocumentID string
	Filename   string
	PageCount  int
	Chunks     []Chunk
	Embeddings [][]float32
	CreatedAt  time.Time
}

// NewDocumentSession builds a session, enforcing the alignment invariant:
// chunks and embeddings must be index-aligned and equal in length. A
// mismatch is a construction error, never a retrieval-time check.
func NewDocumentSession(documentID, filename string, pageCount int, chunks []Chunk, embeddings [][]float32) (*DocumentSession, error) {
	if len(chunks) != len(embeddings) {
		return nil, ErrChunkEmbeddingMismatch
	}
	return &DocumentSession{
		DocumentID: documentID,
		Filename:   filename,
		PageCount:  pageCount,
		Chunks:     chunks,
		Embeddings: embeddings,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// ChunkCount returns the number of chunks in the session.
func (s *DocumentSession) ChunkCount() int {
	return len(s.Chunks)
}
