// Package config holds the explicit process configuration for EquityScope.
// Settings are loaded once at startup from the environment and passed by
// value into the coordinator and worker constructors; core logic never reads
// the environment itself.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Settings is the full runtime configuration. All fields map to environment
// variables with the EQUITYSCOPE_ prefix (EQUITYSCOPE_OPENAI_API_KEY etc.).
type Settings struct {
	// Model provider configuration.
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel     string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	EmbeddingModel  string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`

	// Synthesis tuning.
	Temperature float64 `envconfig:"TEMPERATURE" default:"0.7"`
	MaxTokens   int64   `envconfig:"MAX_TOKENS" default:"4000"`

	// Memory store. Empty StorePath selects the in-memory store.
	StorePath string `envconfig:"STORE_PATH"`

	// News gathering.
	MaxNewsResults int `envconfig:"MAX_NEWS_RESULTS" default:"10"`

	// Logging.
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// envPrefix namespaces all EquityScope environment variables.
const envPrefix = "EQUITYSCOPE"

// Load reads Settings from the environment.
func Load() (Settings, error) {
	var s Settings
	if err := envconfig.Process(envPrefix, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to process environment: %w", err)
	}
	return s, nil
}

// MustLoad is Load that panics on failure. Intended for program entry points.
func MustLoad() Settings {
	s, err := Load()
	if err != nil {
		panic(err)
	}
	return s
}

// Default returns the baseline configuration without touching the
// environment. Useful for tests and embedded use.
func Default() Settings {
	return Settings{
		OpenAIModel:    "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-small",
		Temperature:    0.7,
		MaxTokens:      4000,
		MaxNewsResults: 10,
		LogLevel:       "info",
		LogFormat:      "json",
	}
}
