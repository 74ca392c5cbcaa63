package service

import (
	"fmt"
	"strings"

	"github.com/paperchat-ai/paperchat/internal/domain"
)

// ChunkConfig controls how document pages are cut into retrieval chunks.
// Size and Overlap are rune counts.
type ChunkConfig struct {
	Size    int
	Overlap int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:    1000,
		Overlap: 200,
	}
}

// Validate checks the chunking preconditions.
func (c ChunkConfig) Validate() error {
	if c.Size <= 0 || c.Overlap < 0 || c.Overlap >= c.Size {
		return domain.ErrInvalidChunkConfig
	}
	return nil
}

// ChunkPages splits per-page document text into overlapping fixed-size
// windows. Each page is sliced independently: windows of cfg.Size runes,
// advancing by cfg.Size-cfg.Overlap, so the last cfg.Overlap runes of one
// window reappear at the start of the next. The final window of a page may
// be shorter and is kept as-is. Blank pages produce no chunks; a document
// producing no chunks at all fails with ErrEmptyDocument.
func ChunkPages(documentID string, pages []string, cfg ChunkConfig) ([]domain.Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	step := cfg.Size - cfg.Overlap
	chunks := make([]domain.Chunk, 0, len(pages))

	for pageIdx, pageText := range pages {
		if strings.TrimSpace(pageText) == "" {
			continue
		}

		runes := []rune(pageText)
		pageStart := len(chunks)
		for start := 0; start < len(runes); start += step {
			end := start + cfg.Size
			if end > len(runes) {
				end = len(runes)
			}
			chunks = append(chunks, domain.Chunk{
				Text:       string(runes[start:end]),
				Page:       pageIdx + 1,
				ChunkIndex: len(chunks) - pageStart,
			})
			if end == len(runes) {
				break
			}
		}

		pageTotal := len(chunks) - pageStart
		for i := pageStart; i < len(chunks); i++ {
			chunks[i].TotalChunks = pageTotal
			chunks[i].ID = fmt.Sprintf("%s_p%d_c%d", documentID, pageIdx+1, chunks[i].ChunkIndex)
		}
	}

	if len(chunks) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	return chunks, nil
}
