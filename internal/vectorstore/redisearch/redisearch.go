// Package redisearch adapts the store contract to the Redis search module.
// Records live in hashes under a common key prefix; the vector field holds the
// embedding as fixed-width binary (little-endian float32, row major), which
// the search module requires and this adapter encodes and parses itself.
package redisearch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"raggate/internal/domain"
	"raggate/internal/vectorstore"
)

const scoreField = "vector_score"

type Config struct {
	URL       string
	Password  string
	Index     string
	Prefix    string
	Dimension int
}

// Store is the Redis-backed adapter.
type Store struct {
	cfg    Config
	ready  vectorstore.ReadyGuard
	client *redis.Client
}

func New(cfg Config) *Store {
	if cfg.Prefix == "" {
		cfg.Prefix = cfg.Index
	}
	return &Store{cfg: cfg}
}

func (s *Store) key(id string) string {
	return s.cfg.Prefix + ":" + id
}

func (s *Store) EnsureReady(ctx context.Context) error {
	return s.ready.Do(func() error {
		if s.cfg.URL == "" {
			return fmt.Errorf("%w: redis URL is not set", domain.ErrNotConfigured)
		}
		if s.client == nil {
			opt, err := redis.ParseURL(s.cfg.URL)
			if err != nil {
				return fmt.Errorf("%w: redis URL: %v", domain.ErrNotConfigured, err)
			}
			if s.cfg.Password != "" {
				opt.Password = s.cfg.Password
			}
			s.client = redis.NewClient(opt)
		}
		err := s.client.FTCreate(ctx, s.cfg.Index,
			&redis.FTCreateOptions{OnHash: true, Prefix: []interface{}{s.cfg.Prefix + ":"}},
			&redis.FieldSchema{FieldName: "content", FieldType: redis.SearchFieldTypeText},
			&redis.FieldSchema{FieldName: "source", FieldType: redis.SearchFieldTypeTag},
			&redis.FieldSchema{FieldName: "chunk_index", FieldType: redis.SearchFieldTypeNumeric},
			&redis.FieldSchema{
				FieldName: "embedding",
				FieldType: redis.SearchFieldTypeVector,
				VectorArgs: &redis.FTVectorArgs{
					HNSWOptions: &redis.FTHNSWOptions{
						Type:           "FLOAT32",
						Dim:            s.cfg.Dimension,
						DistanceMetric: "COSINE",
					},
				},
			},
		).Err()
		if err != nil && !strings.Contains(strings.ToLower(err.Error()), "index already exists") {
			return fmt.Errorf("%w: redis FT.CREATE: %v", domain.ErrBackend, err)
		}
		return nil
	})
}

func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32, source string, metadata map[string]any) (int, error) {
	ok, err := vectorstore.CheckUpsert(chunks, embeddings)
	if err != nil || !ok {
		return 0, err
	}
	if err := s.EnsureReady(ctx); err != nil {
		return 0, err
	}
	pipe := s.client.Pipeline()
	for i, c := range chunks {
		fields := map[string]any{
			"content":     c.Text,
			"source":      source,
			"chunk_index": c.Index,
			"embedding":   EncodeVector(embeddings[i]),
		}
		// Hash fields are flat strings; metadata values are stringified.
		for k, v := range metadata {
			fields[k] = fmt.Sprint(v)
		}
		id := vectorstore.ChunkID(source, c).String()
		pipe.HSet(ctx, s.key(id), fields)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: redis upsert: %v", domain.ErrBackend, err)
	}
	return len(chunks), nil
}

func (s *Store) QueryTopK(ctx context.Context, embedding []float32, k int) ([]domain.Hit, error) {
	if err := vectorstore.CheckTopK(k); err != nil {
		return nil, err
	}
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("*=>[KNN $k @embedding $vec AS %s]", scoreField)
	res, err := s.client.FTSearchWithArgs(ctx, s.cfg.Index, query, &redis.FTSearchOptions{
		Return: []redis.FTSearchReturn{
			{FieldName: "content"},
			{FieldName: "source"},
			{FieldName: "chunk_index"},
			{FieldName: scoreField},
		},
		SortBy:         []redis.FTSearchSortBy{{FieldName: scoreField, Asc: true}},
		DialectVersion: 2,
		Limit:          k,
		Params: map[string]interface{}{
			"k":   k,
			"vec": EncodeVector(embedding),
		},
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: redis search: %v", domain.ErrBackend, err)
	}
	hits := make([]domain.Hit, 0, len(res.Docs))
	for _, doc := range res.Docs {
		hit := domain.Hit{
			// The canonical identifier is the key without the prefix.
			ID:      strings.TrimPrefix(doc.ID, s.cfg.Prefix+":"),
			Content: doc.Fields["content"],
			Source:  vectorstore.PayloadSource(doc.Fields["source"]),
		}
		if v, err := strconv.Atoi(doc.Fields["chunk_index"]); err == nil {
			hit.ChunkIndex = v
		}
		// KNN reports cosine distance, lower is better.
		if d, err := strconv.ParseFloat(doc.Fields[scoreField], 64); err == nil {
			hit.Score = 1 - d
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

var _ vectorstore.Store = (*Store)(nil)
