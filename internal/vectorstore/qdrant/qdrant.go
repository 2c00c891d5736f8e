// Package qdrant adapts the store contract to Qdrant via the official gRPC
// client. Qdrant accepts our canonical UUIDs as point IDs directly and stores
// arbitrary payload, so this is the most direct of the adapters.
package qdrant

import (
	"context"
	"fmt"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"raggate/internal/domain"
	"raggate/internal/vectorstore"
)

type Config struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	Dimension  int
}

// Store is the Qdrant-backed adapter. The gRPC client is established lazily on
// first use and reused for the process lifetime.
type Store struct {
	cfg    Config
	ready  vectorstore.ReadyGuard
	client *qdrant.Client
}

func New(cfg Config) *Store {
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	return &Store{cfg: cfg}
}

func (s *Store) EnsureReady(ctx context.Context) error {
	return s.ready.Do(func() error {
		if s.cfg.Host == "" {
			return fmt.Errorf("%w: qdrant host is not set", domain.ErrNotConfigured)
		}
		if s.client == nil {
			client, err := qdrant.NewClient(&qdrant.Config{
				Host:   s.cfg.Host,
				Port:   s.cfg.Port,
				APIKey: s.cfg.APIKey,
				UseTLS: s.cfg.UseTLS,
			})
			if err != nil {
				return fmt.Errorf("%w: qdrant connect: %v", domain.ErrNotConfigured, err)
			}
			s.client = client
		}
		exists, err := s.client.CollectionExists(ctx, s.cfg.Collection)
		if err != nil {
			return fmt.Errorf("%w: qdrant collection check: %v", domain.ErrBackend, err)
		}
		if exists {
			return nil
		}
		err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.cfg.Collection,
			VectorsConfig: &qdrant.VectorsConfig{
				Config: &qdrant.VectorsConfig_Params{
					Params: &qdrant.VectorParams{
						Size:     uint64(s.cfg.Dimension),
						Distance: qdrant.Distance_Cosine,
					},
				},
			},
		})
		// A concurrent creator may win the race; that is success for us.
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("%w: qdrant create collection: %v", domain.ErrBackend, err)
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
	points := make([]*qdrant.PointStruct, len(chunks))
	for i, c := range chunks {
		payload := map[string]any{
			"content":     c.Text,
			"source":      source,
			"chunk_index": c.Index,
		}
		for k, v := range metadata {
			payload[k] = v
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(vectorstore.ChunkID(source, c).String()),
			Vectors: qdrant.NewVectors(embeddings[i]...),
			Payload: qdrant.NewValueMap(payload),
		}
	}
	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.cfg.Collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("%w: qdrant upsert: %v", domain.ErrBackend, err)
	}
	return len(points), nil
}

func (s *Store) QueryTopK(ctx context.Context, embedding []float32, k int) ([]domain.Hit, error) {
	if err := vectorstore.CheckTopK(k); err != nil {
		return nil, err
	}
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}
	limit := uint64(k)
	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.cfg.Collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: qdrant query: %v", domain.ErrBackend, err)
	}
	hits := make([]domain.Hit, 0, len(resp))
	for _, pt := range resp {
		hit := domain.Hit{
			ID: pt.Id.GetUuid(),
			// Cosine in Qdrant is already a similarity, higher is better.
			Score: float64(pt.Score),
		}
		if v, ok := pt.Payload["content"]; ok {
			hit.Content = v.GetStringValue()
		}
		hit.Source = vectorstore.PayloadSource(pt.Payload["source"].GetStringValue())
		if v, ok := pt.Payload["chunk_index"]; ok {
			hit.ChunkIndex = int(v.GetIntegerValue())
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

var _ vectorstore.Store = (*Store)(nil)
