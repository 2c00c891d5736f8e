package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"raggate/internal/chunker"
	"raggate/internal/config"
	"raggate/internal/domain"
	"raggate/internal/embedding"
	"raggate/internal/llm"
	"raggate/internal/server"
	"raggate/internal/service"
	"raggate/internal/vectorstore"
	"raggate/internal/vectorstore/memory"
	"raggate/internal/vectorstore/mongo"
	"raggate/internal/vectorstore/qdrant"
	"raggate/internal/vectorstore/redisearch"
	"raggate/internal/vectorstore/weaviate"
	"raggate/internal/vectorstore/weaviatehttp"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "path to YAML config file")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ch, err := chunker.New(cfg.Chunker.Size, cfg.Chunker.Overlap)
	if err != nil {
		log.Error("invalid chunker config", "error", err)
		os.Exit(1)
	}

	mode := cfg.Mode()
	timeout := time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second

	var embedder domain.Embedder
	var generator domain.Generator
	if mode == "openai" {
		apiKey := os.Getenv(cfg.OpenAI.APIKeyEnv)
		embedder, err = embedding.NewClient(embedding.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKey:    apiKey,
			Model:     cfg.OpenAI.EmbeddingModel,
			Dimension: cfg.EmbeddingDim,
			Timeout:   timeout,
		})
		if err != nil {
			log.Error("embeddings client init failed", "error", err)
			os.Exit(1)
		}
		generator, err = llm.NewClient(llm.Config{
			BaseURL: cfg.OpenAI.BaseURL,
			APIKey:  apiKey,
			Model:   cfg.OpenAI.Model,
			Timeout: timeout,
		})
		if err != nil {
			log.Error("chat client init failed", "error", err)
			os.Exit(1)
		}
	} else {
		embedder = embedding.NewMock(cfg.EmbeddingDim)
		generator = llm.NewExtractive(3)
	}

	store, err := buildStore(cfg)
	if err != nil {
		log.Error("vector store init failed", "error", err)
		os.Exit(1)
	}

	svc := service.New(ch, embedder, generator, vectorstore.NewFacade(store), cfg.DataDir, log)
	srv := server.New(svc, mode, log)

	log.Info("starting",
		"addr", cfg.Server.Addr,
		"mode", mode,
		"backend", cfg.VectorStore.Type,
		"collection", cfg.VectorStore.Collection,
	)
	if err := http.ListenAndServe(cfg.Server.Addr, srv.Handler()); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// buildStore selects the one backend adapter for this deployment. Backends
// with unset targets still construct; they fail with a not-configured error
// on first use.
func buildStore(cfg *config.AppConfig) (vectorstore.Store, error) {
	vs := cfg.VectorStore
	switch vs.Type {
	case "memory", "":
		return memory.New(), nil
	case "qdrant":
		return qdrant.New(qdrant.Config{
			Host:       vs.Qdrant.Host,
			Port:       vs.Qdrant.Port,
			APIKey:     vs.Qdrant.APIKey,
			UseTLS:     vs.Qdrant.UseTLS,
			Collection: vs.Collection,
			Dimension:  cfg.EmbeddingDim,
		}), nil
	case "weaviate":
		return weaviate.New(weaviate.Config{
			Host:   vs.Weaviate.Host,
			Scheme: vs.Weaviate.Scheme,
			APIKey: vs.Weaviate.APIKey,
			Class:  vs.Collection,
		}), nil
	case "weaviate-http":
		return weaviatehttp.New(weaviatehttp.Config{
			BaseURL: vs.Weaviate.BaseURL,
			APIKey:  vs.Weaviate.APIKey,
			Class:   vs.Collection,
		}), nil
	case "redisearch":
		return redisearch.New(redisearch.Config{
			URL:       vs.Redis.URL,
			Password:  vs.Redis.Password,
			Index:     vs.Redis.Index,
			Prefix:    vs.Redis.Index,
			Dimension: cfg.EmbeddingDim,
		}), nil
	case "mongo":
		return mongo.New(mongo.Config{
			URI:        vs.Mongo.URI,
			Database:   vs.Mongo.Database,
			Collection: vs.Collection,
			Index:      vs.Mongo.Index,
			Dimension:  cfg.EmbeddingDim,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown vector store %q", domain.ErrConfiguration, vs.Type)
	}
}
