package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/paperchat-ai/paperchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSession(t *testing.T, documentID string) *domain.DocumentSession {
	t.Helper()
	chunks, err := ChunkPages(documentID, []string{"ABCDEFGHIJKLMNO"}, ChunkConfig{Size: 10, Overlap: 3})
	require.NoError(t, err)
	session, err := domain.NewDocumentSession(documentID, "doc.pdf", 1, chunks, identityEmbeddings(len(chunks), 3))
	require.NoError(t, err)
	return session
}

func TestServerSessionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("create then resolve", func(t *testing.T) {
		store := NewServerSessionStore()
		session := makeSession(t, "doc-1")

		ticket, err := store.Create(ctx, session)
		require.NoError(t, err)
		assert.Equal(t, "doc-1", ticket.DocumentID)
		assert.Nil(t, ticket.Payload)

		resolved, err := store.Resolve(ctx, SessionSource{DocumentID: "doc-1"})
		require.NoError(t, err)
		assert.Same(t, session, resolved)
	})

	t.Run("resolve unknown id", func(t *testing.T) {
		store := NewServerSessionStore()
		_, err := store.Resolve(ctx, SessionSource{DocumentID: "missing"})
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("create replaces but resolved snapshots survive", func(t *testing.T) {
		store := NewServerSessionStore()
		first := makeSession(t, "doc-1")
		_, err := store.Create(ctx, first)
		require.NoError(t, err)

		held, err := store.Resolve(ctx, SessionSource{DocumentID: "doc-1"})
		require.NoError(t, err)

		second := makeSession(t, "doc-1")
		_, err = store.Create(ctx, second)
		require.NoError(t, err)

		// The earlier snapshot is untouched by the replacement.
		assert.Same(t, first, held)

		resolved, err := store.Resolve(ctx, SessionSource{DocumentID: "doc-1"})
		require.NoError(t, err)
		assert.Same(t, second, resolved)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("clear removes the session", func(t *testing.T) {
		store := NewServerSessionStore()
		_, err := store.Create(ctx, makeSession(t, "doc-1"))
		require.NoError(t, err)

		require.NoError(t, store.Clear(ctx, "doc-1"))
		_, err = store.Resolve(ctx, SessionSource{DocumentID: "doc-1"})
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("clear unknown id", func(t *testing.T) {
		store := NewServerSessionStore()
		assert.ErrorIs(t, store.Clear(ctx, "missing"), domain.ErrSessionNotFound)
	})

	t.Run("sweep evicts only expired sessions", func(t *testing.T) {
		store := NewServerSessionStore()
		old := makeSession(t, "doc-old")
		old.CreatedAt = time.Now().Add(-2 * time.Hour)
		fresh := makeSession(t, "doc-fresh")

		_, err := store.Create(ctx, old)
		require.NoError(t, err)
		_, err = store.Create(ctx, fresh)
		require.NoError(t, err)

		evicted := store.Sweep(time.Now().Add(-time.Hour))
		assert.Equal(t, 1, evicted)
		assert.Equal(t, 1, store.Len())

		_, err = store.Resolve(ctx, SessionSource{DocumentID: "doc-fresh"})
		assert.NoError(t, err)
	})

	t.Run("concurrent access", func(t *testing.T) {
		store := NewServerSessionStore()
		_, err := store.Create(ctx, makeSession(t, "doc-1"))
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, _ = store.Resolve(ctx, SessionSource{DocumentID: "doc-1"})
			}()
			go func() {
				defer wg.Done()
				_, _ = store.Create(ctx, makeSession(t, "doc-1"))
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, store.Len())
	})
}

func TestStatelessSessionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("create returns full payload", func(t *testing.T) {
		store := NewStatelessSessionStore()
		session := makeSession(t, "doc-1")

		ticket, err := store.Create(ctx, session)
		require.NoError(t, err)
		require.NotNil(t, ticket.Payload)
		assert.Equal(t, "doc-1", ticket.Payload.DocumentID)
		assert.Len(t, ticket.Payload.Chunks, len(session.Chunks))
		assert.Len(t, ticket.Payload.ChunkMetadata, len(session.Chunks))
	})

	t.Run("resolve without payload fails", func(t *testing.T) {
		store := NewStatelessSessionStore()
		_, err := store.Resolve(ctx, SessionSource{DocumentID: "doc-1"})
		require.Error(t, err)
		assert.Equal(t, domain.ErrCodeValidation, domain.CodeOf(err))
	})

	t.Run("clear is a no-op", func(t *testing.T) {
		store := NewStatelessSessionStore()
		assert.NoError(t, store.Clear(ctx, "anything"))
	})
}

func TestSessionPayloadRoundTrip(t *testing.T) {
	t.Run("round trip preserves retrieval behavior", func(t *testing.T) {
		session := makeSession(t, "doc-1")
		payload := PayloadFromSession(session)

		// Through JSON, as the wire would carry it.
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		var replayed SessionPayload
		require.NoError(t, json.Unmarshal(data, &replayed))

		rebuilt, err := replayed.ToSession()
		require.NoError(t, err)

		require.Len(t, rebuilt.Chunks, len(session.Chunks))
		for i := range session.Chunks {
			assert.Equal(t, session.Chunks[i], rebuilt.Chunks[i])
		}

		query := []float32{0.9, 0.1, 0}
		direct := RetrieveFromSession(session, query, 2)
		viaPayload := RetrieveFromSession(rebuilt, query, 2)
		assert.Equal(t, direct, viaPayload)
	})

	t.Run("mismatched metadata fails", func(t *testing.T) {
		session := makeSession(t, "doc-1")
		payload := PayloadFromSession(session)
		payload.ChunkMetadata = payload.ChunkMetadata[:1]

		_, err := payload.ToSession()
		require.Error(t, err)
		assert.Equal(t, domain.ErrCodeValidation, domain.CodeOf(err))
	})

	t.Run("mismatched embeddings fail", func(t *testing.T) {
		session := makeSession(t, "doc-1")
		payload := PayloadFromSession(session)
		payload.Embeddings = payload.Embeddings[:1]

		_, err := payload.ToSession()
		assert.ErrorIs(t, err, domain.ErrChunkEmbeddingMismatch)
	})
}

func TestSessionModeEquivalence(t *testing.T) {
	// The same document ingested through either store must answer retrieval
	// queries identically.
	ctx := context.Background()
	session := makeSession(t, "doc-1")
	query := []float32{0.2, 0.8, 0}

	serverStore := NewServerSessionStore()
	_, err := serverStore.Create(ctx, session)
	require.NoError(t, err)
	fromServer, err := serverStore.Resolve(ctx, SessionSource{DocumentID: "doc-1"})
	require.NoError(t, err)

	statelessStore := NewStatelessSessionStore()
	ticket, err := statelessStore.Create(ctx, session)
	require.NoError(t, err)
	fromPayload, err := statelessStore.Resolve(ctx, SessionSource{Payload: ticket.Payload})
	require.NoError(t, err)

	assert.Equal(t,
		RetrieveFromSession(fromServer, query, 2),
		RetrieveFromSession(fromPayload, query, 2),
	)
}
