package mongo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raggate/internal/domain"
)

func TestEnsureReadyFailsFastWhenUnconfigured(t *testing.T) {
	s := New(Config{Database: "rag", Collection: "rag_chunks"})
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
	_, err := s.QueryTopK(context.Background(), []float32{1}, 0)
	require.ErrorIs(t, err, domain.ErrClientInput)
}

func TestIndexDefaultName(t *testing.T) {
	s := New(Config{})
	assert.Equal(t, "vector_index", s.cfg.Index)
}

func TestIndexExistsMatching(t *testing.T) {
	assert.True(t, indexExists(errors.New("Index already exists with name vector_index")))
	assert.True(t, indexExists(errors.New("(IndexAlreadyExists) Duplicate index name")))
	assert.False(t, indexExists(errors.New("connection refused")))
}
