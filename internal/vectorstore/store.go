package vectorstore

import (
	"context"
	"fmt"

	"raggate/internal/domain"
)

// Store is the single contract every backend adapter implements. Exactly one
// adapter is active per deployment; the rest of the system only ever sees this
// interface through the Facade.
//
// EnsureReady lazily creates the backend collection/index/schema. It is
// idempotent, memoized on success, and safe under concurrent first access; a
// concurrent "already exists" from the backend is success, not an error.
//
// Upsert writes one record per (chunk, embedding) pair, keyed by the
// deterministic chunk identifier, with insert-or-replace semantics. It returns
// the number of records written. Caller metadata is merged into the stored
// payload; metadata keys may shadow content/source/chunk_index, last write
// wins.
//
// QueryTopK returns at most k hits ordered best match first, with scores
// normalized to cosine similarity (higher is better) whatever the backend's
// native metric direction. Fewer than k stored records returns all of them.
type Store interface {
	EnsureReady(ctx context.Context) error
	Upsert(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32, source string, metadata map[string]any) (int, error)
	QueryTopK(ctx context.Context, embedding []float32, k int) ([]domain.Hit, error)
}

// CheckUpsert enforces the shared upsert preconditions. Every adapter calls it
// before touching its client so that an empty batch never reaches the network.
// The bool reports whether there is anything to write.
func CheckUpsert(chunks []domain.Chunk, embeddings [][]float32) (bool, error) {
	if len(chunks) != len(embeddings) {
		return false, fmt.Errorf("%w: %d chunks, %d embeddings", domain.ErrLengthMismatch, len(chunks), len(embeddings))
	}
	return len(chunks) > 0, nil
}

// CheckTopK enforces the shared query precondition.
func CheckTopK(k int) error {
	if k < 1 {
		return fmt.Errorf("%w: top_k must be >= 1, got %d", domain.ErrClientInput, k)
	}
	return nil
}

// PayloadSource extracts the source field from decoded payload data, falling
// back to "unknown" when the stored record lacks it. All adapters use this so
// hits have one consistent shape.
func PayloadSource(v any) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return "unknown"
}
