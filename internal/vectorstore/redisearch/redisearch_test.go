package redisearch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raggate/internal/domain"
)

func TestEnsureReadyFailsFastWhenUnconfigured(t *testing.T) {
	s := New(Config{Index: "rag:chunks", Dimension: 4})
	require.ErrorIs(t, s.EnsureReady(context.Background()), domain.ErrNotConfigured)
}

func TestEnsureReadyRejectsBadURL(t *testing.T) {
	s := New(Config{URL: "not a url", Index: "rag:chunks"})
	require.ErrorIs(t, s.EnsureReady(context.Background()), domain.ErrNotConfigured)
}

func TestUpsertEmptySkipsBackend(t *testing.T) {
	s := New(Config{})
	n, err := s.Upsert(context.Background(), nil, nil, "doc", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestQueryRejectsNonPositiveK(t *testing.T) {
	s := New(Config{})
	_, err := s.QueryTopK(context.Background(), []float32{1}, -1)
	require.ErrorIs(t, err, domain.ErrClientInput)
}

func TestPrefixDefaultsToIndex(t *testing.T) {
	s := New(Config{Index: "rag:chunks"})
	assert.Equal(t, "rag:chunks:abc", s.key("abc"))
}
