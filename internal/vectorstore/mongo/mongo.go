// Package mongo adapts the store contract to MongoDB used as a vector index
// (Atlas vector search). The search stage does not reliably return full
// document metadata, so reads are two-phase: a vector search for identifiers
// and scores, then a bulk fetch by identifier merged back onto the hits. A
// row whose metadata fetch comes up empty keeps its id and score rather than
// failing the query.
package mongo

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"raggate/internal/domain"
	"raggate/internal/vectorstore"
)

type Config struct {
	URI        string
	Database   string
	Collection string
	Index      string
	Dimension  int
}

// Store is the MongoDB-backed adapter.
type Store struct {
	cfg   Config
	ready vectorstore.ReadyGuard
	coll  *mongo.Collection
}

func New(cfg Config) *Store {
	if cfg.Index == "" {
		cfg.Index = "vector_index"
	}
	return &Store{cfg: cfg}
}

type record struct {
	ID         string         `bson:"_id"`
	Content    string         `bson:"content"`
	Source     string         `bson:"source"`
	ChunkIndex int            `bson:"chunk_index"`
	Embedding  []float32      `bson:"embedding"`
	Metadata   map[string]any `bson:"metadata,omitempty"`
}

func (s *Store) EnsureReady(ctx context.Context) error {
	return s.ready.Do(func() error {
		if s.cfg.URI == "" {
			return fmt.Errorf("%w: mongodb URI is not set", domain.ErrNotConfigured)
		}
		if s.coll == nil {
			client, err := mongo.Connect(options.Client().ApplyURI(s.cfg.URI))
			if err != nil {
				return fmt.Errorf("%w: mongodb connect: %v", domain.ErrNotConfigured, err)
			}
			s.coll = client.Database(s.cfg.Database).Collection(s.cfg.Collection)
		}
		definition := bson.D{{Key: "fields", Value: bson.A{bson.D{
			{Key: "type", Value: "vector"},
			{Key: "path", Value: "embedding"},
			{Key: "numDimensions", Value: s.cfg.Dimension},
			{Key: "similarity", Value: "cosine"},
		}}}}
		_, err := s.coll.SearchIndexes().CreateOne(ctx, mongo.SearchIndexModel{
			Definition: definition,
			Options:    options.SearchIndexes().SetName(s.cfg.Index).SetType("vectorSearch"),
		})
		if err != nil && !indexExists(err) {
			return fmt.Errorf("%w: mongodb create search index: %v", domain.ErrBackend, err)
		}
		return nil
	})
}

func indexExists(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate")
}

func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32, source string, metadata map[string]any) (int, error) {
	ok, err := vectorstore.CheckUpsert(chunks, embeddings)
	if err != nil || !ok {
		return 0, err
	}
	if err := s.EnsureReady(ctx); err != nil {
		return 0, err
	}
	opts := options.Replace().SetUpsert(true)
	for i, c := range chunks {
		id := vectorstore.ChunkID(source, c).String()
		doc := record{
			ID:         id,
			Content:    c.Text,
			Source:     source,
			ChunkIndex: c.Index,
			Embedding:  embeddings[i],
		}
		if len(metadata) > 0 {
			doc.Metadata = metadata
		}
		if _, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc, opts); err != nil {
			return 0, fmt.Errorf("%w: mongodb upsert: %v", domain.ErrBackend, err)
		}
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
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: s.cfg.Index},
			{Key: "path", Value: "embedding"},
			{Key: "queryVector", Value: embedding},
			{Key: "numCandidates", Value: k * 10},
			{Key: "limit", Value: k},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 1},
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%w: mongodb vector search: %v", domain.ErrBackend, err)
	}
	var matches []struct {
		ID    string  `bson:"_id"`
		Score float64 `bson:"score"`
	}
	if err := cursor.All(ctx, &matches); err != nil {
		return nil, fmt.Errorf("%w: mongodb vector search decode: %v", domain.ErrBackend, err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	records, err := s.fetchByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	hits := make([]domain.Hit, 0, len(matches))
	for _, m := range matches {
		// The score ($meta vectorSearchScore) is already a similarity,
		// higher is better.
		hit := domain.Hit{ID: m.ID, Source: "unknown", Score: m.Score}
		if rec, ok := records[m.ID]; ok {
			hit.Content = rec.Content
			hit.Source = vectorstore.PayloadSource(rec.Source)
			hit.ChunkIndex = rec.ChunkIndex
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// fetchByID is the secondary metadata pass, keyed by canonical identifier.
func (s *Store) fetchByID(ctx context.Context, ids []string) (map[string]record, error) {
	cursor, err := s.coll.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, fmt.Errorf("%w: mongodb fetch by id: %v", domain.ErrBackend, err)
	}
	var records []record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("%w: mongodb fetch decode: %v", domain.ErrBackend, err)
	}
	byID := make(map[string]record, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	return byID, nil
}

var _ vectorstore.Store = (*Store)(nil)
