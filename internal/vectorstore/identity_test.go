package vectorstore

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raggate/internal/domain"
)

func TestChunkIDDeterministic(t *testing.T) {
	c := domain.Chunk{Index: 3, Text: "some chunk text"}
	a := ChunkID("doc1", c)
	b := ChunkID("doc1", c)
	assert.Equal(t, a, b)
}

func TestChunkIDIsNameBasedUUID(t *testing.T) {
	id := ChunkID("doc1", domain.Chunk{Index: 0, Text: "x"})
	assert.Equal(t, uuid.Version(5), id.Version())
	assert.Equal(t, uuid.RFC4122, id.Variant())
}

func TestChunkIDSensitiveToEveryComponent(t *testing.T) {
	base := ChunkID("doc1", domain.Chunk{Index: 1, Text: "hello"})
	assert.NotEqual(t, base, ChunkID("doc2", domain.Chunk{Index: 1, Text: "hello"}))
	assert.NotEqual(t, base, ChunkID("doc1", domain.Chunk{Index: 2, Text: "hello"}))
	assert.NotEqual(t, base, ChunkID("doc1", domain.Chunk{Index: 1, Text: "hello!"}))
}

func TestChunkIDNoCollisionsAcrossCorpus(t *testing.T) {
	seen := make(map[uuid.UUID]string)
	for s := 0; s < 10; s++ {
		source := fmt.Sprintf("doc%d", s)
		for i := 0; i < 100; i++ {
			c := domain.Chunk{Index: i, Text: fmt.Sprintf("chunk body %d of %s", i, source)}
			id := ChunkID(source, c)
			prev, dup := seen[id]
			require.False(t, dup, "collision between %q and %s/%d", prev, source, i)
			seen[id] = fmt.Sprintf("%s/%d", source, i)
		}
	}
}
