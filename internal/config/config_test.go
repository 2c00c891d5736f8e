package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 800, cfg.Chunker.Size)
	assert.Equal(t, 120, cfg.Chunker.Overlap)
	assert.Equal(t, 1536, cfg.EmbeddingDim)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.Equal(t, "rag_chunks", cfg.VectorStore.Collection)
	assert.Equal(t, "data", cfg.DataDir)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
chunker:
  size: 200
  overlap: 40
embedding_dim: 384
vector_store:
  type: qdrant
  collection: docs
  qdrant:
    host: qdrant.internal
    port: 7777
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 200, cfg.Chunker.Size)
	assert.Equal(t, 40, cfg.Chunker.Overlap)
	assert.Equal(t, 384, cfg.EmbeddingDim)
	assert.Equal(t, "qdrant", cfg.VectorStore.Type)
	assert.Equal(t, "docs", cfg.VectorStore.Collection)
	assert.Equal(t, "qdrant.internal", cfg.VectorStore.Qdrant.Host)
	assert.Equal(t, 7777, cfg.VectorStore.Qdrant.Port)
	// Untouched sections keep their defaults.
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv("VECTOR_STORE", "redisearch")
	t.Setenv("REDIS_URL", "redis://cache.internal:6379")
	t.Setenv("CHUNK_SIZE", "256")
	t.Setenv("CHUNK_OVERLAP", "32")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "redisearch", cfg.VectorStore.Type)
	assert.Equal(t, "redis://cache.internal:6379", cfg.VectorStore.Redis.URL)
	assert.Equal(t, 256, cfg.Chunker.Size)
	assert.Equal(t, 32, cfg.Chunker.Overlap)
}

func TestMode(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	t.Setenv("OPENAI_API_KEY", "")
	assert.Equal(t, "mock", cfg.Mode())

	t.Setenv("OPENAI_API_KEY", "sk-test")
	assert.Equal(t, "openai", cfg.Mode())
}
