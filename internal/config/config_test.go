package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Embedding.Dims != 256 {
		t.Errorf("dims = %d, want 256", cfg.Embedding.Dims)
	}
	if cfg.Embedding.CacheSize != 1024 {
		t.Errorf("cache_size = %d, want 1024", cfg.Embedding.CacheSize)
	}
	if cfg.Retrieval.SemanticWeight != 0.5 {
		t.Errorf("semantic_weight = %v, want 0.5", cfg.Retrieval.SemanticWeight)
	}
	if cfg.Store.Target != "memory" {
		t.Errorf("store target = %q, want memory", cfg.Store.Target)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
debug: true
server:
  port: 9090
retrieval:
  default_limit: 5
  semantic_enabled: true
store:
  target: sqlite
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug not set")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Retrieval.DefaultLimit != 5 {
		t.Errorf("default_limit = %d, want 5", cfg.Retrieval.DefaultLimit)
	}
	if !cfg.Retrieval.SemanticEnabled {
		t.Error("semantic_enabled not set")
	}
	if cfg.Store.DatabasePath != "erabu.db" {
		t.Errorf("database_path = %q, want default", cfg.Store.DatabasePath)
	}
	// Untouched sections still get defaults.
	if cfg.Embedding.Model != "token-hash" {
		t.Errorf("model = %q", cfg.Embedding.Model)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad port", "server:\n  port: 99999\n"},
		{"bad weight", "retrieval:\n  semantic_weight: 2\n"},
		{"bad store", "store:\n  target: etcd\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}
