package domain

import "errors"

// Error kinds shared across the system. Callers dispatch on these with
// errors.Is; concrete errors wrap them with fmt.Errorf("...: %w", ...).
var (
	// ErrConfiguration marks an invalid static configuration, such as a
	// chunk overlap that is not smaller than the chunk size.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrNotConfigured marks a vector store whose location or credentials
	// are unset. Maps to a "service unavailable" outcome upstream.
	ErrNotConfigured = errors.New("vector store not configured")

	// ErrLengthMismatch marks an upsert where the chunk and embedding
	// counts differ. This is a caller bug, not a backend fault.
	ErrLengthMismatch = errors.New("chunks and embeddings length mismatch")

	// ErrBackend marks a network or backend-reported failure during
	// bootstrap, write or read. Surfaced verbatim, never retried here.
	ErrBackend = errors.New("vector store backend error")

	// ErrClientInput marks invalid caller input: empty text to ingest,
	// no matching files, an out-of-range top_k.
	ErrClientInput = errors.New("invalid client input")

	// ErrNotFound marks a missing resource, such as an absent data directory.
	ErrNotFound = errors.New("not found")
)
