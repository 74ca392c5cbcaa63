package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/paperchat-ai/paperchat/internal/domain"
)

// SessionPayload is the serialized form of a DocumentSession handed to the
// caller in stateless mode and replayed on every subsequent request.
type SessionPayload struct {
	DocumentID    string          `json:"file_id"`
	Filename      string          `json:"filename"`
	PageCount     int             `json:"page_count"`
	Chunks        []string        `json:"chunks"`
	Embeddings    [][]float32     `json:"embeddings"`
	ChunkMetadata []ChunkMetadata `json:"chunk_metadata"`
}

// ChunkMetadata carries the per-chunk citation fields across the wire.
type ChunkMetadata struct {
	Page        int `json:"page"`
	ChunkIndex  int `json:"chunk_index"`
	TotalChunks int `json:"total_chunks"`
}

// SessionTicket is what a caller must hold on to after ingestion: the
// document id alone in server mode, the full payload in stateless mode.
type SessionTicket struct {
	DocumentID string
	Payload    *SessionPayload
}

// SessionSource identifies or carries the session for a question call.
// Server mode uses DocumentID; stateless mode supplies the full Payload.
type SessionSource struct {
	DocumentID string
	Payload    *SessionPayload
}

// SessionStore owns the lifecycle of document sessions. Two interchangeable
// implementations exist behind this contract; both must produce identical
// retrieval results given equivalent inputs.
type SessionStore interface {
	Create(ctx context.Context, session *domain.DocumentSession) (SessionTicket, error)
	Resolve(ctx context.Context, src SessionSource) (*domain.DocumentSession, error)
	Clear(ctx context.Context, documentID string) error
}

// ServerSessionStore keeps sessions in a process-wide map keyed by document
// id. Sessions live until cleared, replaced, swept by the janitor, or the
// process restarts. Replacement swaps the whole session pointer, so an
// in-flight question keeps the snapshot it resolved.
type ServerSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.DocumentSession
}

// NewServerSessionStore creates an empty server-resident store.
func NewServerSessionStore() *ServerSessionStore {
	return &ServerSessionStore{
		sessions: make(map[string]*domain.DocumentSession),
	}
}

// Create registers the session, replacing any previous session with the
// same document id (last write wins).
func (s *ServerSessionStore) Create(ctx context.Context, session *domain.DocumentSession) (SessionTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.DocumentID] = session
	return SessionTicket{DocumentID: session.DocumentID}, nil
}

// Resolve returns the stored session for the given document id.
func (s *ServerSessionStore) Resolve(ctx context.Context, src SessionSource) (*domain.DocumentSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[src.DocumentID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Clear removes the session for the given document id.
func (s *ServerSessionStore) Clear(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[documentID]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, documentID)
	return nil
}

// Len returns the number of live sessions.
func (s *ServerSessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions created before the cutoff and returns how many
// were evicted. In-flight questions are unaffected: they hold the session
// pointer they resolved.
func (s *ServerSessionStore) Sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, session := range s.sessions {
		if session.CreatedAt.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// StatelessSessionStore holds nothing server-side. Create serializes the
// session into the ticket payload; Resolve is pure deserialization of the
// caller-supplied payload. Not-found can never happen here; retaining the
// payload is the caller's responsibility.
type StatelessSessionStore struct{}

// NewStatelessSessionStore creates a stateless store.
func NewStatelessSessionStore() *StatelessSessionStore {
	return &StatelessSessionStore{}
}

// Create serializes the session for the caller to keep.
func (s *StatelessSessionStore) Create(ctx context.Context, session *domain.DocumentSession) (SessionTicket, error) {
	return SessionTicket{
		DocumentID: session.DocumentID,
		Payload:    PayloadFromSession(session),
	}, nil
}

// Resolve rebuilds the session from the supplied payload.
func (s *StatelessSessionStore) Resolve(ctx context.Context, src SessionSource) (*domain.DocumentSession, error) {
	if src.Payload == nil {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "session payload is required in stateless mode")
	}
	return src.Payload.ToSession()
}

// Clear is a no-op: there is nothing held server-side to clear.
func (s *StatelessSessionStore) Clear(ctx context.Context, documentID string) error {
	return nil
}

// PayloadFromSession serializes a session into its wire form.
func PayloadFromSession(session *domain.DocumentSession) *SessionPayload {
	payload := &SessionPayload{
		DocumentID:    session.DocumentID,
		Filename:      session.Filename,
		PageCount:     session.PageCount,
		Chunks:        make([]string, len(session.Chunks)),
		Embeddings:    session.Embeddings,
		ChunkMetadata: make([]ChunkMetadata, len(session.Chunks)),
	}
	for i, chunk := range session.Chunks {
		payload.Chunks[i] = chunk.Text
		payload.ChunkMetadata[i] = ChunkMetadata{
			Page:        chunk.Page,
			ChunkIndex:  chunk.ChunkIndex,
			TotalChunks: chunk.TotalChunks,
		}
	}
	return payload
}

// ToSession rebuilds a DocumentSession from a replayed payload. Chunk ids
// are regenerated deterministically from the document id and metadata, so a
// round-tripped session retrieves bit-for-bit like a server-resident one.
func (p *SessionPayload) ToSession() (*domain.DocumentSession, error) {
	if len(p.Chunks) != len(p.ChunkMetadata) {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "chunk and metadata counts differ in session payload")
	}

	chunks := make([]domain.Chunk, len(p.Chunks))
	for i, text := range p.Chunks {
		meta := p.ChunkMetadata[i]
		chunks[i] = domain.Chunk{
			ID:          fmt.Sprintf("%s_p%d_c%d", p.DocumentID, meta.Page, meta.ChunkIndex),
			Text:        text,
			Page:        meta.Page,
			ChunkIndex:  meta.ChunkIndex,
			TotalChunks: meta.TotalChunks,
		}
	}

	return domain.NewDocumentSession(p.DocumentID, p.Filename, p.PageCount, chunks, p.Embeddings)
}
