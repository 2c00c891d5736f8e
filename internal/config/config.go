// Package config loads the application configuration: a YAML file with
// defaults, overridden by environment variables so containerized deployments
// can configure everything without a file.
package config

import (
	"errors"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// ChunkerConfig configures the sliding-window text splitter.
type ChunkerConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// OpenAIConfig holds the shared OpenAI-compatible provider settings.
type OpenAIConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`
	TimeoutSecs    int    `yaml:"timeout_secs"`
}

// QdrantConfig contains connection details for the Qdrant backend.
type QdrantConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
	UseTLS bool   `yaml:"use_tls"`
}

// WeaviateConfig contains connection details for both Weaviate backends.
type WeaviateConfig struct {
	Host    string `yaml:"host"`
	Scheme  string `yaml:"scheme"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// RedisConfig contains connection details for the Redis search backend.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	Index    string `yaml:"index"`
}

// MongoConfig contains connection details for the MongoDB backend.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
	Index    string `yaml:"index"`
}

// VectorStoreConfig selects and configures the active backend adapter.
type VectorStoreConfig struct {
	Type       string         `yaml:"type"`
	Collection string         `yaml:"collection"`
	Qdrant     QdrantConfig   `yaml:"qdrant"`
	Weaviate   WeaviateConfig `yaml:"weaviate"`
	Redis      RedisConfig    `yaml:"redis"`
	Mongo      MongoConfig    `yaml:"mongo"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server       ServerConfig      `yaml:"server"`
	Chunker      ChunkerConfig     `yaml:"chunker"`
	EmbeddingDim int               `yaml:"embedding_dim"`
	OpenAI       OpenAIConfig      `yaml:"openai"`
	VectorStore  VectorStoreConfig `yaml:"vector_store"`
	DataDir      string            `yaml:"data_dir"`
}

// Mode reports whether the system runs against a real model provider or in
// deterministic mock mode. Presence of the API key decides.
func (c *AppConfig) Mode() string {
	if os.Getenv(c.OpenAI.APIKeyEnv) != "" {
		return "openai"
	}
	return "mock"
}

// Load reads a config from the given path. A missing file is not an error:
// defaults plus environment overrides apply.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Server:       ServerConfig{Addr: ":8080"},
		Chunker:      ChunkerConfig{Size: 800, Overlap: 120},
		EmbeddingDim: 1536,
		OpenAI: OpenAIConfig{
			APIKeyEnv:      "OPENAI_API_KEY",
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			TimeoutSecs:    30,
		},
		VectorStore: VectorStoreConfig{
			Type:       "memory",
			Collection: "rag_chunks",
			Qdrant:     QdrantConfig{Port: 6334},
			Weaviate:   WeaviateConfig{Scheme: "http"},
			Redis:      RedisConfig{Index: "rag:chunks"},
			Mongo:      MongoConfig{Database: "rag", Index: "vector_index"},
		},
		DataDir: "data",
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Chunker.Size == 0 {
		cfg.Chunker.Size = 800
	}
	if cfg.EmbeddingDim == 0 {
		cfg.EmbeddingDim = 1536
	}
	if cfg.OpenAI.APIKeyEnv == "" {
		cfg.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "rag_chunks"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	overrideString(&cfg.Server.Addr, "RAGGATE_ADDR")
	overrideInt(&cfg.Chunker.Size, "CHUNK_SIZE")
	overrideInt(&cfg.Chunker.Overlap, "CHUNK_OVERLAP")
	overrideInt(&cfg.EmbeddingDim, "EMBEDDING_DIM")
	overrideString(&cfg.OpenAI.BaseURL, "OPENAI_BASE_URL")
	overrideString(&cfg.OpenAI.Model, "OPENAI_MODEL")
	overrideString(&cfg.OpenAI.EmbeddingModel, "OPENAI_EMBEDDING_MODEL")
	overrideString(&cfg.VectorStore.Type, "VECTOR_STORE")
	overrideString(&cfg.VectorStore.Collection, "VECTOR_COLLECTION")
	overrideString(&cfg.VectorStore.Qdrant.Host, "QDRANT_HOST")
	overrideInt(&cfg.VectorStore.Qdrant.Port, "QDRANT_PORT")
	overrideString(&cfg.VectorStore.Qdrant.APIKey, "QDRANT_API_KEY")
	overrideString(&cfg.VectorStore.Weaviate.Host, "WEAVIATE_HOST")
	overrideString(&cfg.VectorStore.Weaviate.Scheme, "WEAVIATE_SCHEME")
	overrideString(&cfg.VectorStore.Weaviate.BaseURL, "WEAVIATE_URL")
	overrideString(&cfg.VectorStore.Weaviate.APIKey, "WEAVIATE_API_KEY")
	overrideString(&cfg.VectorStore.Redis.URL, "REDIS_URL")
	overrideString(&cfg.VectorStore.Redis.Password, "REDIS_PASSWORD")
	overrideString(&cfg.VectorStore.Redis.Index, "REDIS_INDEX")
	overrideString(&cfg.VectorStore.Mongo.URI, "MONGODB_URI")
	overrideString(&cfg.VectorStore.Mongo.Database, "MONGODB_DATABASE")
	overrideString(&cfg.VectorStore.Mongo.Index, "MONGODB_VECTOR_INDEX")
	overrideString(&cfg.DataDir, "DATA_DIR")
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
