package chunker

import (
	"fmt"
	"strings"

	"raggate/internal/domain"
)

// Chunker splits text into fixed-size rune windows with overlap. The window
// advances by size-overlap runes each step; whitespace-only windows are
// dropped. Emitted chunks carry contiguous zero-based indices in emission
// order, so the index of a chunk is independent of its rune offset.
//
// The same splitting must be reproduced exactly on re-ingest: chunk text and
// index feed the deterministic chunk identifier, which is what makes repeated
// ingestion overwrite instead of duplicate.
type Chunker struct {
	size    int
	overlap int
}

// New validates the window parameters. overlap >= size would make the window
// stop advancing, so it is rejected up front rather than looping forever.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrConfiguration, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap must be in [0, size), got size=%d overlap=%d",
			domain.ErrConfiguration, size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Size reports the configured window size in runes.
func (c *Chunker) Size() int { return c.size }

// Overlap reports the configured window overlap in runes.
func (c *Chunker) Overlap() int { return c.overlap }

// Split chunks the given text. Empty or whitespace-only input yields an empty
// slice and no error; callers decide whether that is a client error.
func (c *Chunker) Split(text string) []domain.Chunk {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}
	step := c.size - c.overlap
	var chunks []domain.Chunk
	idx := 0
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		window := string(runes[start:end])
		if strings.TrimSpace(window) != "" {
			chunks = append(chunks, domain.Chunk{Index: idx, Text: window})
			idx++
		}
		// Once a window reaches the end of the text the remainder is pure
		// overlap; stop instead of emitting it again.
		if end == len(runes) {
			break
		}
	}
	return chunks
}
