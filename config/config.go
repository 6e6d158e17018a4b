package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Database struct {
		ConnectionString string `yaml:"connection_string"`
	} `yaml:"database"`
	Ollama struct {
		BaseURL        string `yaml:"base_url"`
		EmbeddingModel string `yaml:"embedding_model"`
	} `yaml:"ollama"`
	Search struct {
		FuzzyThreshold float64  `yaml:"fuzzy_threshold"`
		DefaultLimit   int      `yaml:"default_limit"`
		EmbedTimeout   Duration `yaml:"embed_timeout"`
	} `yaml:"search"`
	Backfill struct {
		BatchSize  int      `yaml:"batch_size"`
		Workers    int      `yaml:"workers"`
		MaxRetries int      `yaml:"max_retries"`
		RetryDelay Duration `yaml:"retry_delay"`
	} `yaml:"backfill"`
	Paths struct {
		MigrationsDir string `yaml:"migrations_dir"`
	} `yaml:"paths"`
}

// Load loads configuration from the given path, falling back to
// ~/.memoro/config.yaml, or returns defaults when no file exists
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".memoro", "config.yaml")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given path, defaulting to
// ~/.memoro/config.yaml like Load
func (c *Config) Save(path string) error {
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".memoro", "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Default returns default configuration
func Default() *Config {
	cfg := &Config{}

	cfg.Database.ConnectionString = "postgres://postgres@localhost/memoro?sslmode=disable"
	cfg.Ollama.BaseURL = "http://localhost:11434"
	cfg.Ollama.EmbeddingModel = "nomic-embed-text"
	cfg.Search.FuzzyThreshold = 0.3
	cfg.Search.DefaultLimit = 10
	cfg.Search.EmbedTimeout = Duration(10 * time.Second)
	cfg.Backfill.BatchSize = 100
	cfg.Backfill.Workers = 4
	cfg.Backfill.MaxRetries = 3
	cfg.Backfill.RetryDelay = Duration(time.Second)
	cfg.Paths.MigrationsDir = "migrations"

	return cfg
}

// Duration wraps time.Duration so YAML values can be written as strings
// like "10s" or "500ms"
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("failed to decode duration: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("failed to parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
