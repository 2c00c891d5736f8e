package vectorstore

import (
	"context"

	"raggate/internal/domain"
)

// Facade fronts the one backend adapter selected at startup. It is the only
// vector-store surface the rest of the system calls; both operations run the
// adapter's bootstrap first, so callers never have to sequence EnsureReady
// themselves. There is no runtime backend switching.
type Facade struct {
	store Store
}

// NewFacade wraps the active adapter.
func NewFacade(store Store) *Facade {
	return &Facade{store: store}
}

// UpsertChunks writes the chunk/embedding pairs through the active adapter.
func (f *Facade) UpsertChunks(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32, source string, metadata map[string]any) (int, error) {
	if err := f.store.EnsureReady(ctx); err != nil {
		return 0, err
	}
	return f.store.Upsert(ctx, chunks, embeddings, source, metadata)
}

// QueryTopK retrieves the k nearest stored chunks for the query embedding.
func (f *Facade) QueryTopK(ctx context.Context, embedding []float32, k int) ([]domain.Hit, error) {
	if err := f.store.EnsureReady(ctx); err != nil {
		return nil, err
	}
	return f.store.QueryTopK(ctx, embedding, k)
}
