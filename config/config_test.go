package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, int64(4000), cfg.MaxTokens)
	assert.Equal(t, 10, cfg.MaxNewsResults)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.StorePath)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("EQUITYSCOPE_OPENAI_API_KEY", "sk-test")
	t.Setenv("EQUITYSCOPE_OPENAI_MODEL", "gpt-4o")
	t.Setenv("EQUITYSCOPE_TEMPERATURE", "0.2")
	t.Setenv("EQUITYSCOPE_MAX_NEWS_RESULTS", "5")
	t.Setenv("EQUITYSCOPE_STORE_PATH", "/tmp/mem.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, 0.2, cfg.Temperature)
	assert.Equal(t, 5, cfg.MaxNewsResults)
	assert.Equal(t, "/tmp/mem.db", cfg.StorePath)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("EQUITYSCOPE_TEMPERATURE", "hot")

	_, err := Load()
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 10, cfg.MaxNewsResults)
}
