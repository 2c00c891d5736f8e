package domain

import "context"

// Chunk is an indexed fragment of ingested text. Chunks are produced only by
// the chunker and are scoped to a single ingest call; they are never persisted
// on their own, only together with their embedding vector.
type Chunk struct {
	Index int
	Text  string
}

// Hit is one retrieved chunk with its similarity score. Hits are built fresh
// per query and never persisted. Score is always cosine similarity normalized
// so that higher means more similar, regardless of what the backend natively
// reports; hits are ordered best match first.
type Hit struct {
	ID         string
	Content    string
	Source     string
	ChunkIndex int
	Score      float64
}

// Citation points a generated answer back at one retrieved chunk.
type Citation struct {
	ChunkID string `json:"chunk_id"`
	Source  string `json:"source"`
}

// Embedder converts texts into fixed-dimension vectors, one per input text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Generator produces an answer to a question given a retrieved context block.
type Generator interface {
	Generate(ctx context.Context, question, contextBlock string) (string, error)
}
