package vectorstore

import (
	"fmt"

	"github.com/google/uuid"

	"raggate/internal/domain"
)

// ChunkID derives the stable 128-bit identifier for a chunk: a name-based
// UUID (version 5) over the URL namespace of "source-index-text". Identical
// (source, index, text) triples yield the identical identifier across
// processes and time, which is what makes re-ingesting a document overwrite
// its records instead of duplicating them.
func ChunkID(source string, c domain.Chunk) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s-%d-%s", source, c.Index, c.Text)))
}
