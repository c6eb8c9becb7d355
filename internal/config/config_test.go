package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: 0.0.0.0
  port: 3000
embedding:
  base_url: http://localhost:8000
  model: clip-vit-l-14
  dimensions: 768
vector:
  base_url: http://localhost:6333
  collection: pictures
ingest:
  directory: ./images
  interval_seconds: 5
storage:
  database_path: ./db/feedback.db
token:
  secret: test-secret
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug: got false")
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("port: got %d", cfg.Server.Port)
	}
	if cfg.Embedding.Model != "clip-vit-l-14" {
		t.Errorf("model: got %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dimensions != 768 {
		t.Errorf("dimensions: got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Vector.Collection != "pictures" {
		t.Errorf("collection: got %q", cfg.Vector.Collection)
	}
	if cfg.Ingest.IntervalSeconds != 5 {
		t.Errorf("interval: got %d", cfg.Ingest.IntervalSeconds)
	}
	if cfg.Ingest.Directory != filepath.Join(dir, "images") {
		t.Errorf("directory not expanded: got %q", cfg.Ingest.Directory)
	}
	if cfg.Storage.DatabasePath != filepath.Join(dir, "db/feedback.db") {
		t.Errorf("database path not expanded: got %q", cfg.Storage.DatabasePath)
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Embedding.Dimensions != 512 {
		t.Errorf("default dimensions: got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Ingest.IntervalSeconds != 10 {
		t.Errorf("default interval: got %d", cfg.Ingest.IntervalSeconds)
	}
	if cfg.Token.ValidityHours != 24 {
		t.Errorf("default validity: got %d", cfg.Token.ValidityHours)
	}
	if len(cfg.Ingest.Extensions) == 0 {
		t.Error("default extensions: got none")
	}
}

func TestLoad_SecretEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("token:\n  secret: from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(TokenSecretEnv, "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Token.Secret != "from-env" {
		t.Errorf("secret: got %q, want env override", cfg.Token.Secret)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Embedding: EmbeddingConfig{BaseURL: "http://m:8000", Dimensions: 512},
		Vector:    VectorConfig{BaseURL: "http://q:6333", Collection: "images"},
		Ingest:    IngestConfig{Directory: "/images"},
		Token:     TokenConfig{Secret: "s"},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing embedding url", func(c *Config) { c.Embedding.BaseURL = "" }},
		{"zero dimensions", func(c *Config) { c.Embedding.Dimensions = 0 }},
		{"missing vector url", func(c *Config) { c.Vector.BaseURL = "" }},
		{"missing collection", func(c *Config) { c.Vector.Collection = "" }},
		{"missing directory", func(c *Config) { c.Ingest.Directory = "" }},
		{"missing secret", func(c *Config) { c.Token.Secret = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
