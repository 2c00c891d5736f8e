package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raggate/internal/chunker"
	"raggate/internal/domain"
	"raggate/internal/embedding"
	"raggate/internal/llm"
	"raggate/internal/vectorstore"
	"raggate/internal/vectorstore/memory"
)

func newTestRAG(t *testing.T, dataDir string) (*RAG, *memory.Store) {
	t.Helper()
	ch, err := chunker.New(40, 10)
	require.NoError(t, err)
	store := memory.New()
	svc := New(ch, embedding.NewMock(128), llm.NewExtractive(2), vectorstore.NewFacade(store), dataDir, nil)
	return svc, store
}

func TestIngestAndAskRoundTrip(t *testing.T) {
	svc, _ := newTestRAG(t, "")
	ctx := context.Background()

	added, err := svc.Ingest(ctx, "doc1",
		"Gophers live in burrows. The Go gopher is the mascot of the Go language. "+
			"Compilers turn source code into machine code.", nil)
	require.NoError(t, err)
	assert.Greater(t, added, 0)

	answer, err := svc.Ask(ctx, "What is the mascot of the Go language?", 3)
	require.NoError(t, err)
	assert.NotEmpty(t, answer.Answer)
	require.NotEmpty(t, answer.Hits)
	require.Len(t, answer.Citations, len(answer.Hits))
	for i, c := range answer.Citations {
		assert.Equal(t, answer.Hits[i].ID, c.ChunkID)
		assert.Equal(t, "doc1", c.Source)
	}
}

func TestIngestEmptyTextIsClientError(t *testing.T) {
	svc, _ := newTestRAG(t, "")
	_, err := svc.Ingest(context.Background(), "doc1", "   \n  ", nil)
	require.ErrorIs(t, err, domain.ErrClientInput)
}

func TestIngestTwiceDoesNotGrowStore(t *testing.T) {
	svc, store := newTestRAG(t, "")
	ctx := context.Background()
	text := "Deterministic identifiers make repeated ingestion idempotent across processes and time."

	first, err := svc.Ingest(ctx, "doc1", text, nil)
	require.NoError(t, err)
	size := store.Len()

	second, err := svc.Ingest(ctx, "doc1", text, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, size, store.Len())
}

func TestAskRejectsOutOfRangeTopK(t *testing.T) {
	svc, _ := newTestRAG(t, "")
	ctx := context.Background()

	for _, k := range []int{0, -1, 21, 100} {
		_, err := svc.Ask(ctx, "why?", k)
		require.ErrorIs(t, err, domain.ErrClientInput, "top_k=%d", k)
	}
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	svc, _ := newTestRAG(t, "")
	_, err := svc.Ask(context.Background(), "  ", 3)
	require.ErrorIs(t, err, domain.ErrClientInput)
}

func TestAskWithKLargerThanStore(t *testing.T) {
	svc, _ := newTestRAG(t, "")
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "doc1", "Just one short chunk of text here.", nil)
	require.NoError(t, err)

	answer, err := svc.Ask(ctx, "chunk?", 20)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(answer.Hits), 20)
	assert.NotEmpty(t, answer.Hits)
}

func TestIngestDirMissingDirectory(t *testing.T) {
	svc, _ := newTestRAG(t, filepath.Join(t.TempDir(), "missing"))
	_, err := svc.IngestDir(context.Background())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestDirNoTxtFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644))

	svc, _ := newTestRAG(t, dir)
	_, err := svc.IngestDir(context.Background())
	require.ErrorIs(t, err, domain.ErrClientInput)
}

func TestIngestDirReadsTxtFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("Second file about databases."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("First file about compilers."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.bin"), []byte{0x01}, 0o644))

	svc, store := newTestRAG(t, dir)
	result, err := svc.IngestDir(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "b.txt"}, result.Files)
	assert.Greater(t, result.ChunksIngested, 0)
	assert.Equal(t, result.ChunksIngested, store.Len())

	// Hits from directory ingestion carry the file: source scheme.
	hits, err := vectorstore.NewFacade(store).QueryTopK(context.Background(),
		embeddingFor(t, "compilers"), 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "file:a.txt", hits[0].Source)
}

func embeddingFor(t *testing.T, text string) []float32 {
	t.Helper()
	vecs, err := embedding.NewMock(128).Embed(context.Background(), []string{text})
	require.NoError(t, err)
	return vecs[0]
}
