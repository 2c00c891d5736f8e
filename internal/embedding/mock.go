package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"raggate/internal/domain"
)

var tokenRe = regexp.MustCompile(`\p{L}+|\p{N}+`)

// Mock is a deterministic local embedder used when no embeddings provider is
// configured. It hashes tokens into a fixed number of buckets and normalizes
// the result, so identical texts always embed identically and texts sharing
// vocabulary land near each other. Good enough to exercise the full retrieval
// path without a network.
type Mock struct {
	dimension int
}

func NewMock(dimension int) *Mock {
	if dimension <= 0 {
		dimension = 256
	}
	return &Mock{dimension: dimension}
}

func (m *Mock) Dimension() int { return m.dimension }

func (m *Mock) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = m.embedOne(t)
	}
	return vectors, nil
}

func (m *Mock) embedOne(text string) []float32 {
	v := make([]float32, m.dimension)
	for _, tok := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		v[int(h.Sum32())%m.dimension]++
	}
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}

var _ domain.Embedder = (*Mock)(nil)
