// Package weaviatehttp adapts the store contract to Weaviate using plain HTTP
// against the REST and GraphQL endpoints, with no SDK in between. It declares
// the same fixed class schema as the SDK adapter and likewise ignores caller
// metadata keys outside the declared properties.
package weaviatehttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"raggate/internal/domain"
	"raggate/internal/vectorstore"
)

type Config struct {
	BaseURL string
	APIKey  string
	Class   string
	Timeout time.Duration
}

// Store is a minimal REST/GraphQL client to Weaviate.
type Store struct {
	cfg    Config
	class  string
	ready  vectorstore.ReadyGuard
	client *http.Client
}

func New(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	class := cfg.Class
	if class != "" {
		r := []rune(class)
		r[0] = unicode.ToUpper(r[0])
		class = string(r)
	}
	return &Store{
		cfg:    cfg,
		class:  class,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *Store) EnsureReady(ctx context.Context) error {
	return s.ready.Do(func() error {
		if s.cfg.BaseURL == "" {
			return fmt.Errorf("%w: weaviate base URL is not set", domain.ErrNotConfigured)
		}
		status, _, err := s.do(ctx, http.MethodGet, fmt.Sprintf("/v1/schema/%s", s.class), nil)
		if err != nil {
			return fmt.Errorf("%w: weaviate schema check: %v", domain.ErrBackend, err)
		}
		if status == http.StatusOK {
			return nil
		}
		if status != http.StatusNotFound {
			return fmt.Errorf("%w: weaviate schema check: unexpected status %d", domain.ErrBackend, status)
		}
		class := map[string]any{
			"class":             s.class,
			"vectorizer":        "none",
			"vectorIndexConfig": map[string]any{"distance": "cosine"},
			"properties": []map[string]any{
				{"name": "content", "dataType": []string{"text"}},
				{"name": "source", "dataType": []string{"text"}},
				{"name": "chunk_index", "dataType": []string{"int"}},
			},
		}
		status, body, err := s.do(ctx, http.MethodPost, "/v1/schema", class)
		if err != nil {
			return fmt.Errorf("%w: weaviate create class: %v", domain.ErrBackend, err)
		}
		// Lost a creation race: the class is there, which is all we need.
		if status >= 300 && !bytes.Contains(body, []byte("already exists")) {
			return fmt.Errorf("%w: weaviate create class: status %d: %s", domain.ErrBackend, status, body)
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
	objects := make([]map[string]any, len(chunks))
	for i, c := range chunks {
		objects[i] = map[string]any{
			"class": s.class,
			"id":    vectorstore.ChunkID(source, c).String(),
			"properties": map[string]any{
				"content":     c.Text,
				"source":      source,
				"chunk_index": c.Index,
			},
			"vector": embeddings[i],
		}
	}
	// The batch endpoint replaces objects that already carry the same ID.
	status, body, err := s.do(ctx, http.MethodPost, "/v1/batch/objects", map[string]any{"objects": objects})
	if err != nil {
		return 0, fmt.Errorf("%w: weaviate batch upsert: %v", domain.ErrBackend, err)
	}
	if status >= 300 {
		return 0, fmt.Errorf("%w: weaviate batch upsert: status %d: %s", domain.ErrBackend, status, body)
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
	status, body, err := s.do(ctx, http.MethodPost, "/v1/graphql", map[string]any{
		"query": nearVectorQuery(s.class, embedding, k),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: weaviate query: %v", domain.ErrBackend, err)
	}
	if status >= 300 {
		return nil, fmt.Errorf("%w: weaviate query: status %d: %s", domain.ErrBackend, status, body)
	}
	var resp struct {
		Data   map[string]map[string][]graphHit `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: weaviate query decode: %v", domain.ErrBackend, err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("%w: weaviate query: %s", domain.ErrBackend, resp.Errors[0].Message)
	}
	rows := resp.Data["Get"][s.class]
	hits := make([]domain.Hit, 0, len(rows))
	for _, row := range rows {
		hits = append(hits, domain.Hit{
			ID:         row.Additional.ID,
			Content:    row.Content,
			Source:     vectorstore.PayloadSource(row.Source),
			ChunkIndex: row.ChunkIndex,
			// Weaviate reports cosine distance, lower is better.
			Score: 1 - row.Additional.Distance,
		})
	}
	return hits, nil
}

type graphHit struct {
	Content    string `json:"content"`
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunk_index"`
	Additional struct {
		ID       string  `json:"id"`
		Distance float64 `json:"distance"`
	} `json:"_additional"`
}

// nearVectorQuery builds the GraphQL Get query by hand; the query embedding
// is inlined as a float literal list.
func nearVectorQuery(class string, embedding []float32, k int) string {
	var b strings.Builder
	for i, v := range embedding {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	return fmt.Sprintf(
		`{ Get { %s(limit: %d, nearVector: {vector: [%s]}) { content source chunk_index _additional { id distance } } } }`,
		class, k, b.String(),
	)
}

func (s *Store) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.cfg.BaseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

var _ vectorstore.Store = (*Store)(nil)
