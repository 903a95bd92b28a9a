package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
llm:
  model: "gpt-4.1-mini"
  embedding_model: "text-embedding-3-small"
  max_tokens: 1000
  temperature: 0.5

database:
  url: "postgres://localhost:5432/ircc"
  vector_dim: 1536
  batch_size: 16
  fetch_k: 25
  top_k: 5

extractor:
  timeout_seconds: 10
  rate_limit: 1.5

chunker:
  max_tokens: 400
  overlap_tokens: 60
  min_chars: 100

server:
  port: "9090"
`

func loadTestConfig(t *testing.T, data string) *Config {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(data), 0644))

	config, err := LoadConfig(configPath)
	require.NoError(t, err)
	return config
}

func TestLoadConfig(t *testing.T) {
	config := loadTestConfig(t, testConfig)

	assert.Equal(t, "gpt-4.1-mini", config.LLM.Model)
	assert.Equal(t, "text-embedding-3-small", config.LLM.EmbeddingModel)
	assert.Equal(t, 1000, config.LLM.MaxTokens)
	assert.Equal(t, 0.5, config.LLM.Temperature)
	assert.Equal(t, "postgres://localhost:5432/ircc", config.Database.URL)
	assert.Equal(t, 16, config.Database.BatchSize)
	assert.Equal(t, 25, config.Database.FetchK)
	assert.Equal(t, 5, config.Database.TopK)
	assert.Equal(t, 10, config.Extractor.TimeoutSeconds)
	assert.Equal(t, 400, config.Chunker.MaxTokens)
	assert.Equal(t, "9090", config.Server.Port)
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	config := loadTestConfig(t, "database:\n  url: \"postgres://localhost:5432/ircc\"\n")

	assert.Equal(t, "gpt-4.1-mini", config.LLM.Model)
	assert.Equal(t, 1536, config.Database.VectorDim)
	assert.Equal(t, 32, config.Database.BatchSize)
	assert.Equal(t, 30, config.Database.FetchK)
	assert.Equal(t, 6, config.Database.TopK)
	assert.Equal(t, 800, config.Chunker.MaxTokens)
	assert.Equal(t, 120, config.Chunker.OverlapTokens)
	assert.Equal(t, 140, config.Chunker.MinChars)
	assert.Equal(t, "ircc-rag-bot/0.1", config.Extractor.UserAgent)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://envhost:5432/envdb")
	t.Setenv("PORT", "3000")

	config := loadTestConfig(t, testConfig)

	assert.Equal(t, "postgres://envhost:5432/envdb", config.Database.URL)
	assert.Equal(t, "3000", config.Server.Port)
}

func TestConfigValidation(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		config := loadTestConfig(t, testConfig)
		assert.Empty(t, config.Validate())
	})

	t.Run("missing database url", func(t *testing.T) {
		config := loadTestConfig(t, testConfig)
		config.Database.URL = ""

		errs := config.Validate()
		require.Len(t, errs, 1)
		assert.Equal(t, "database.url", errs[0].Field)
	})

	t.Run("overlap must stay below window", func(t *testing.T) {
		config := loadTestConfig(t, testConfig)
		config.Chunker.OverlapTokens = config.Chunker.MaxTokens

		errs := config.Validate()
		require.Len(t, errs, 1)
		assert.Equal(t, "chunker.overlap_tokens", errs[0].Field)
	})

	t.Run("fetch_k below top_k", func(t *testing.T) {
		config := loadTestConfig(t, testConfig)
		config.Database.FetchK = 3

		errs := config.Validate()
		require.Len(t, errs, 1)
		assert.Equal(t, "database.fetch_k", errs[0].Field)
	})
}
