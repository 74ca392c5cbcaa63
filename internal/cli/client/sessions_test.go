package client

import (
	"testing"

	"github.com/paperchat-ai/paperchat/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempSessionsDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	original := getSessionsDirFunc
	getSessionsDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { getSessionsDirFunc = original })
}

func TestCachedSessionRoundTrip(t *testing.T) {
	useTempSessionsDir(t)

	cached := &CachedSession{
		FileID:     "doc-1",
		Filename:   "paper.pdf",
		PageCount:  2,
		ChunkCount: 3,
		Stateless:  true,
		Payload: &service.SessionPayload{
			DocumentID:    "doc-1",
			Filename:      "paper.pdf",
			PageCount:     2,
			Chunks:        []string{"a", "b", "c"},
			Embeddings:    [][]float32{{1}, {2}, {3}},
			ChunkMetadata: []service.ChunkMetadata{{Page: 1}, {Page: 1, ChunkIndex: 1}, {Page: 2}},
		},
		History: []HistoryTurn{{Role: "user", Content: "hi"}},
	}
	require.NoError(t, SaveCachedSession(cached))

	loaded, err := LoadCachedSession("doc-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "paper.pdf", loaded.Filename)
	assert.True(t, loaded.Stateless)
	require.NotNil(t, loaded.Payload)
	assert.Equal(t, []string{"a", "b", "c"}, loaded.Payload.Chunks)
	require.Len(t, loaded.History, 1)
	assert.Equal(t, "hi", loaded.History[0].Content)
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestLoadCachedSession_Missing(t *testing.T) {
	useTempSessionsDir(t)

	loaded, err := LoadCachedSession("nope")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestDeleteCachedSession(t *testing.T) {
	useTempSessionsDir(t)

	require.NoError(t, SaveCachedSession(&CachedSession{FileID: "doc-1"}))
	require.NoError(t, DeleteCachedSession("doc-1"))

	loaded, err := LoadCachedSession("doc-1")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Deleting again is fine.
	assert.NoError(t, DeleteCachedSession("doc-1"))
}

func TestListCachedSessions(t *testing.T) {
	useTempSessionsDir(t)

	sessions, err := ListCachedSessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)

	require.NoError(t, SaveCachedSession(&CachedSession{FileID: "doc-1", Filename: "a.pdf"}))
	require.NoError(t, SaveCachedSession(&CachedSession{FileID: "doc-2", Filename: "b.pdf"}))

	sessions, err = ListCachedSessions()
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}
