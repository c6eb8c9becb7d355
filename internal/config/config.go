// Package config provides configuration loading and structs for the Gazou server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// TokenSecretEnv overrides the configured token signing secret when set.
const TokenSecretEnv = "GAZOU_TOKEN_SECRET"

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Vector    VectorConfig    `yaml:"vector"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Storage   StorageConfig   `yaml:"storage"`
	Token     TokenConfig     `yaml:"token"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// EmbeddingConfig holds settings for the external embedding model service.
type EmbeddingConfig struct {
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	CacheSize  int    `yaml:"cache_size"`
}

// VectorConfig holds settings for the external vector index service.
type VectorConfig struct {
	BaseURL    string `yaml:"base_url"`
	Collection string `yaml:"collection"`
	TopK       int    `yaml:"top_k"`
}

// IngestConfig holds source directory polling settings.
type IngestConfig struct {
	Directory       string   `yaml:"directory"`
	IntervalSeconds int      `yaml:"interval_seconds"`
	Extensions      []string `yaml:"extensions"`
	Watch           bool     `yaml:"watch"`
	TrackerPath     string   `yaml:"tracker_path"`
}

// StorageConfig holds the feedback database path.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// TokenConfig holds result-binding token settings.
type TokenConfig struct {
	Secret        string `yaml:"secret"`
	ValidityHours int    `yaml:"validity_hours"`
}

// Load reads and parses the config file at path, expands paths, applies defaults,
// and applies environment overrides. Returns an error if the file cannot be read
// or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Ingest.Directory = expandPath(cfg.Ingest.Directory, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	if cfg.Ingest.TrackerPath != "" {
		cfg.Ingest.TrackerPath = expandPath(cfg.Ingest.TrackerPath, configDir)
	}

	if secret := os.Getenv(TokenSecretEnv); secret != "" {
		cfg.Token.Secret = secret
	}

	return &cfg, nil
}

// Validate checks that required settings are present. The token secret is
// required so a deployment can never fall through to an unsigned mode.
func (c *Config) Validate() error {
	if c.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding.base_url is required")
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive")
	}
	if c.Vector.BaseURL == "" {
		return fmt.Errorf("vector.base_url is required")
	}
	if c.Vector.Collection == "" {
		return fmt.Errorf("vector.collection is required")
	}
	if c.Ingest.Directory == "" {
		return fmt.Errorf("ingest.directory is required")
	}
	if c.Token.Secret == "" {
		return fmt.Errorf("token secret is required (set token.secret or %s)", TokenSecretEnv)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
