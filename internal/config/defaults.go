package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "clip-vit-b-32"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 512
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}
	if cfg.Vector.Collection == "" {
		cfg.Vector.Collection = "images"
	}
	if cfg.Vector.TopK == 0 {
		cfg.Vector.TopK = 5
	}
	if cfg.Ingest.Directory == "" {
		cfg.Ingest.Directory = "/images"
	}
	if cfg.Ingest.IntervalSeconds == 0 {
		cfg.Ingest.IntervalSeconds = 10
	}
	if cfg.Ingest.Extensions == nil {
		cfg.Ingest.Extensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/gazou/data/db/feedback.db"
	}
	if cfg.Token.ValidityHours == 0 {
		cfg.Token.ValidityHours = 24
	}
}
