// Package service is the retrieval orchestrator: it owns the ingest and ask
// flows, delegating splitting to the chunker, vectors to the embedder, storage
// to the vector-store facade and answer text to the generator.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"raggate/internal/chunker"
	"raggate/internal/domain"
	"raggate/internal/llm"
	"raggate/internal/vectorstore"
)

// Bounds on the per-query hit count. Out-of-range values are a client error,
// never silently clamped.
const (
	MinTopK = 1
	MaxTopK = 20
)

// Answer is the result of one Ask call.
type Answer struct {
	Answer    string
	Hits      []domain.Hit
	Citations []domain.Citation
}

// IngestDirResult reports a directory ingest: which files were read and how
// many chunks they produced in total.
type IngestDirResult struct {
	Files          []string
	ChunksIngested int
}

// RAG wires the pipeline together. One instance lives for the process.
type RAG struct {
	chunker   *chunker.Chunker
	embedder  domain.Embedder
	generator domain.Generator
	store     *vectorstore.Facade
	dataDir   string
	log       *slog.Logger
}

func New(ch *chunker.Chunker, embedder domain.Embedder, generator domain.Generator, store *vectorstore.Facade, dataDir string, log *slog.Logger) *RAG {
	if log == nil {
		log = slog.Default()
	}
	return &RAG{
		chunker:   ch,
		embedder:  embedder,
		generator: generator,
		store:     store,
		dataDir:   dataDir,
		log:       log,
	}
}

// Ingest splits text, embeds the chunks and upserts them under the given
// source. Returns the number of chunks written.
func (r *RAG) Ingest(ctx context.Context, source, text string, metadata map[string]any) (int, error) {
	chunks := r.chunker.Split(text)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: no content to ingest after cleaning", domain.ErrClientInput)
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	embeddings, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	written, err := r.store.UpsertChunks(ctx, chunks, embeddings, source, metadata)
	if err != nil {
		return 0, err
	}
	r.log.Info("ingested document", "source", source, "chunks", written)
	return written, nil
}

// Ask embeds the question, retrieves the topK nearest chunks and generates an
// answer from them.
func (r *RAG) Ask(ctx context.Context, question string, topK int) (Answer, error) {
	if topK < MinTopK || topK > MaxTopK {
		return Answer{}, fmt.Errorf("%w: top_k must be between %d and %d, got %d",
			domain.ErrClientInput, MinTopK, MaxTopK, topK)
	}
	if strings.TrimSpace(question) == "" {
		return Answer{}, fmt.Errorf("%w: question is empty", domain.ErrClientInput)
	}
	embeddings, err := r.embedder.Embed(ctx, []string{question})
	if err != nil {
		return Answer{}, fmt.Errorf("embed question: %w", err)
	}
	hits, err := r.store.QueryTopK(ctx, embeddings[0], topK)
	if err != nil {
		return Answer{}, err
	}
	answer, err := r.generator.Generate(ctx, question, llm.BuildContextBlock(hits))
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}
	citations := make([]domain.Citation, len(hits))
	for i, h := range hits {
		citations[i] = domain.Citation{ChunkID: h.ID, Source: h.Source}
	}
	return Answer{Answer: answer, Hits: hits, Citations: citations}, nil
}

// IngestDir reads every .txt file from the configured data directory, in name
// order, and ingests each under a file:<name> source with the filename kept
// as metadata.
func (r *RAG) IngestDir(ctx context.Context) (IngestDirResult, error) {
	entries, err := os.ReadDir(r.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return IngestDirResult{}, fmt.Errorf("%w: data directory %q does not exist", domain.ErrNotFound, r.dataDir)
		}
		return IngestDirResult{}, fmt.Errorf("read data directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return IngestDirResult{}, fmt.Errorf("%w: no .txt files in %q", domain.ErrClientInput, r.dataDir)
	}
	sort.Strings(names)

	result := IngestDirResult{Files: names}
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(r.dataDir, name))
		if err != nil {
			return IngestDirResult{}, fmt.Errorf("read %s: %w", name, err)
		}
		chunks := r.chunker.Split(string(data))
		if len(chunks) == 0 {
			continue
		}
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		embeddings, err := r.embedder.Embed(ctx, texts)
		if err != nil {
			return IngestDirResult{}, fmt.Errorf("embed %s: %w", name, err)
		}
		written, err := r.store.UpsertChunks(ctx, chunks, embeddings, "file:"+name, map[string]any{"filename": name})
		if err != nil {
			return IngestDirResult{}, err
		}
		result.ChunksIngested += written
	}
	r.log.Info("ingested directory", "dir", r.dataDir, "files", len(names), "chunks", result.ChunksIngested)
	return result, nil
}
