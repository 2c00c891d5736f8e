// Package weaviate adapts the store contract to Weaviate via the official Go
// SDK. Weaviate is schema-first: the class declares content, source and
// chunk_index as typed properties up front, and caller metadata keys outside
// that declared schema are ignored rather than written.
package weaviate

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"raggate/internal/domain"
	"raggate/internal/vectorstore"
)

type Config struct {
	Host   string
	Scheme string
	APIKey string
	Class  string
}

// Store is the Weaviate SDK adapter.
type Store struct {
	cfg    Config
	class  string
	ready  vectorstore.ReadyGuard
	client *weaviate.Client
}

func New(cfg Config) *Store {
	if cfg.Scheme == "" {
		cfg.Scheme = "http"
	}
	return &Store{cfg: cfg, class: ClassName(cfg.Class)}
}

// ClassName normalizes a collection name into a valid Weaviate class name,
// which must begin with an uppercase letter.
func ClassName(name string) string {
	if name == "" {
		return name
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func (s *Store) EnsureReady(ctx context.Context) error {
	return s.ready.Do(func() error {
		if s.cfg.Host == "" {
			return fmt.Errorf("%w: weaviate host is not set", domain.ErrNotConfigured)
		}
		if s.client == nil {
			cfg := weaviate.Config{Host: s.cfg.Host, Scheme: s.cfg.Scheme}
			if s.cfg.APIKey != "" {
				cfg.AuthConfig = auth.ApiKey{Value: s.cfg.APIKey}
			}
			client, err := weaviate.NewClient(cfg)
			if err != nil {
				return fmt.Errorf("%w: weaviate connect: %v", domain.ErrNotConfigured, err)
			}
			s.client = client
		}
		exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(s.class).Do(ctx)
		if err != nil {
			return fmt.Errorf("%w: weaviate schema check: %v", domain.ErrBackend, err)
		}
		if exists {
			return nil
		}
		err = s.client.Schema().ClassCreator().WithClass(classDefinition(s.class)).Do(ctx)
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("%w: weaviate create class: %v", domain.ErrBackend, err)
		}
		return nil
	})
}

func classDefinition(class string) *models.Class {
	return &models.Class{
		Class:             class,
		Vectorizer:        "none",
		VectorIndexConfig: map[string]any{"distance": "cosine"},
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"text"}},
			{Name: "chunk_index", DataType: []string{"int"}},
		},
	}
}

func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32, source string, metadata map[string]any) (int, error) {
	ok, err := vectorstore.CheckUpsert(chunks, embeddings)
	if err != nil || !ok {
		return 0, err
	}
	if err := s.EnsureReady(ctx); err != nil {
		return 0, err
	}
	objects := make([]*models.Object, len(chunks))
	for i, c := range chunks {
		objects[i] = &models.Object{
			Class: s.class,
			ID:    strfmt.UUID(vectorstore.ChunkID(source, c).String()),
			Properties: map[string]any{
				"content":     c.Text,
				"source":      source,
				"chunk_index": c.Index,
			},
			Vector: models.C11yVector(embeddings[i]),
		}
	}
	// The batch endpoint upserts by object ID, so re-ingesting the same
	// document overwrites in place.
	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: weaviate batch upsert: %v", domain.ErrBackend, err)
	}
	for _, r := range resp {
		if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
			return 0, fmt.Errorf("%w: weaviate batch upsert: %s", domain.ErrBackend, r.Result.Errors.Error[0].Message)
		}
	}
	return len(objects), nil
}

func (s *Store) QueryTopK(ctx context.Context, embedding []float32, k int) ([]domain.Hit, error) {
	if err := vectorstore.CheckTopK(k); err != nil {
		return nil, err
	}
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "source"},
		{Name: "chunk_index"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "id"}, {Name: "distance"}}},
	}
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(embedding)
	resp, err := s.client.GraphQL().Get().
		WithClassName(s.class).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: weaviate query: %v", domain.ErrBackend, err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("%w: weaviate query: %s", domain.ErrBackend, resp.Errors[0].Message)
	}
	return decodeHits(resp.Data, s.class)
}

// decodeHits unpacks the GraphQL Get response. Weaviate reports cosine
// distance (lower is better); hits are normalized to similarity = 1-distance.
func decodeHits(data map[string]models.JSONObject, class string) ([]domain.Hit, error) {
	get, ok := data["Get"].(map[string]any)
	if !ok {
		return nil, nil
	}
	rows, ok := get[class].([]any)
	if !ok {
		return nil, nil
	}
	hits := make([]domain.Hit, 0, len(rows))
	for _, raw := range rows {
		row, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		hit := domain.Hit{Source: vectorstore.PayloadSource(row["source"])}
		if v, ok := row["content"].(string); ok {
			hit.Content = v
		}
		if v, ok := row["chunk_index"].(float64); ok {
			hit.ChunkIndex = int(v)
		}
		if add, ok := row["_additional"].(map[string]any); ok {
			if v, ok := add["id"].(string); ok {
				hit.ID = v
			}
			if v, ok := add["distance"].(float64); ok {
				hit.Score = 1 - v
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

var _ vectorstore.Store = (*Store)(nil)
