package domain

// Chunk is a bounded, page-tagged slice of document text, the unit of retrieval.
// Chunks are created once at ingestion and never mutated; their identity is
// stable for the lifetime of the owning session.
type Chunk struct {
	ID          string
	Text        string
	Page        int // 1-based page number the chunk was cut from
	ChunkIndex  int // ordinal position within its page
	TotalChunks int // chunk count for the page, kept for citation display
}

// Excerpt returns the chunk text truncated to maxChars runes for citation
// display, with a trailing ellipsis when the text was cut.
func (c Chunk) Excerpt(maxChars int) string {
	runes := []rune(c.Text)
	if maxChars <= 0 || len(runes) <= maxChars {
		return c.Text
	}
	return string(runes[:maxChars]) + "..."
}

// RetrievedChunk pairs a chunk with its relevance score for one retrieval
// call. It is transient and never persisted.
type RetrievedChunk struct {
	Chunk Chunk
	Score float32
}
