package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotEmpty(t, cfg.Database.ConnectionString)
	assert.Equal(t, "nomic-embed-text", cfg.Ollama.EmbeddingModel)
	assert.Equal(t, 0.3, cfg.Search.FuzzyThreshold)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.Equal(t, 10*time.Second, cfg.Search.EmbedTimeout.Std())
	assert.Equal(t, 100, cfg.Backfill.BatchSize)
	assert.Equal(t, 4, cfg.Backfill.Workers)
}

func TestLoad(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
database:
  connection_string: postgres://app@db/crm
search:
  fuzzy_threshold: 0.5
  embed_timeout: 2s
backfill:
  workers: 8
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "postgres://app@db/crm", cfg.Database.ConnectionString)
		assert.Equal(t, 0.5, cfg.Search.FuzzyThreshold)
		assert.Equal(t, 2*time.Second, cfg.Search.EmbedTimeout.Std())
		assert.Equal(t, 8, cfg.Backfill.Workers)
		// Untouched sections keep defaults.
		assert.Equal(t, 100, cfg.Backfill.BatchSize)
		assert.Equal(t, "nomic-embed-text", cfg.Ollama.EmbeddingModel)
	})

	t.Run("saved config loads back unchanged", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sub", "config.yaml")
		cfg := Default()
		cfg.Search.FuzzyThreshold = 0.4
		cfg.Backfill.RetryDelay = Duration(250 * time.Millisecond)
		require.NoError(t, cfg.Save(path))

		loaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, cfg, loaded)
	})

	t.Run("malformed file returns error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("database: ["), 0644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}
