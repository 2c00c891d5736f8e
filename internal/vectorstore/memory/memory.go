package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"raggate/internal/domain"
	"raggate/internal/vectorstore"
)

type record struct {
	content    string
	source     string
	chunkIndex int
	embedding  []float32
}

// Store is a brute-force cosine-similarity store held in process memory,
// keyed by chunk identifier so upserts genuinely overwrite. It backs mock
// mode and the test suite; it needs no bootstrap and is always configured.
type Store struct {
	mu      sync.RWMutex
	records map[string]record
}

func New() *Store {
	return &Store{records: make(map[string]record)}
}

func (s *Store) EnsureReady(ctx context.Context) error { return nil }

func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32, source string, metadata map[string]any) (int, error) {
	ok, err := vectorstore.CheckUpsert(chunks, embeddings)
	if err != nil || !ok {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range chunks {
		id := vectorstore.ChunkID(source, c).String()
		rec := record{content: c.Text, source: source, chunkIndex: c.Index, embedding: embeddings[i]}
		if v, ok := metadata["source"].(string); ok {
			rec.source = v
		}
		s.records[id] = rec
	}
	return len(chunks), nil
}

func (s *Store) QueryTopK(ctx context.Context, embedding []float32, k int) ([]domain.Hit, error) {
	if err := vectorstore.CheckTopK(k); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	hits := make([]domain.Hit, 0, len(s.records))
	for id, rec := range s.records {
		hits = append(hits, domain.Hit{
			ID:         id,
			Content:    rec.content,
			Source:     rec.source,
			ChunkIndex: rec.chunkIndex,
			Score:      cosine(embedding, rec.embedding),
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

var _ vectorstore.Store = (*Store)(nil)
