// Package config loads and validates the YAML configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Store     StoreConfig     `yaml:"store"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// EmbeddingConfig selects and parameterizes the embedding model.
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	Version        string `yaml:"version"`
	Dims           int    `yaml:"dims"`
	Precision      int    `yaml:"precision"`
	CandidateLimit int    `yaml:"candidate_limit"`
	CacheSize      int    `yaml:"cache_size"`
}

// RetrievalConfig holds ranking defaults.
type RetrievalConfig struct {
	DefaultLimit    int     `yaml:"default_limit"`
	SemanticWeight  float64 `yaml:"semantic_weight"`
	SemanticEnabled bool    `yaml:"semantic_enabled"`
	PaletteSize     int     `yaml:"palette_size"`
}

// StoreConfig selects the vector store backend.
type StoreConfig struct {
	// Target is "memory" or "sqlite".
	Target       string `yaml:"target"`
	DatabasePath string `yaml:"database_path"`
}

// Load reads the configuration from path. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills in zero values with working defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "hash"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "token-hash"
	}
	if c.Embedding.Version == "" {
		c.Embedding.Version = "v1"
	}
	if c.Embedding.Dims == 0 {
		c.Embedding.Dims = 256
	}
	if c.Embedding.Precision == 0 {
		c.Embedding.Precision = 6
	}
	if c.Embedding.CandidateLimit == 0 {
		c.Embedding.CandidateLimit = 50
	}
	if c.Embedding.CacheSize == 0 {
		c.Embedding.CacheSize = 1024
	}
	if c.Retrieval.DefaultLimit == 0 {
		c.Retrieval.DefaultLimit = 10
	}
	if c.Retrieval.SemanticWeight == 0 {
		c.Retrieval.SemanticWeight = 0.5
	}
	if c.Retrieval.PaletteSize == 0 {
		c.Retrieval.PaletteSize = 8
	}
	if c.Store.Target == "" {
		c.Store.Target = "memory"
	}
	if c.Store.Target == "sqlite" && c.Store.DatabasePath == "" {
		c.Store.DatabasePath = "erabu.db"
	}
}

// Validate checks for values that would misbehave at runtime.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Embedding.Dims < 1 {
		return fmt.Errorf("invalid embedding dims: %d", c.Embedding.Dims)
	}
	if c.Retrieval.SemanticWeight < 0 || c.Retrieval.SemanticWeight > 1 {
		return fmt.Errorf("semantic_weight %v outside [0,1]", c.Retrieval.SemanticWeight)
	}
	switch c.Store.Target {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unknown store target: %q", c.Store.Target)
	}
	return nil
}
