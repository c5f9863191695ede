package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable the loader reads, so the test is immune to
// the developer's shell.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		EnvAnthropicKey, EnvOpenAIKey, EnvGeminiKey, EnvCustomKey,
		EnvProvider, EnvModel, EnvBaseURL, EnvRoot, EnvLogLevel,
	} {
		t.Setenv(v, "")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "balanced", cfg.Session.Preset)
	assert.Equal(t, 2, cfg.Session.Rounds)
	assert.True(t, cfg.Logging.Enabled)
}

func TestLoadParsesAndLayersEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: ollama
  model: llama3
session:
  preset: startup
  rounds: 3
`), 0o644))

	t.Setenv(EnvModel, "llama3.1")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3.1", cfg.LLM.Model, "env wins over file")
	assert.Equal(t, "startup", cfg.Session.Preset)
	assert.Equal(t, 3, cfg.Session.Rounds)
	// Unset fields keep their defaults.
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [not a map"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("keys fill only their provider slot", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvAnthropicKey, "ant-key")
		t.Setenv(EnvGeminiKey, "gem-key")

		cfg := DefaultConfig()
		cfg.LLM.Provider = "gemini"
		cfg.applyEnvOverrides()

		assert.Equal(t, "ant-key", cfg.LLM.AnthropicAPIKey)
		assert.Equal(t, "gem-key", cfg.LLM.GeminiAPIKey)
		assert.Equal(t, "gemini", cfg.LLM.Provider, "keys must not switch the provider")
		assert.Equal(t, "gem-key", cfg.APIKey())
	})

	t.Run("WINDROSE_PROVIDER switches provider", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvProvider, "openai")
		t.Setenv(EnvOpenAIKey, "oa-key")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "openai", cfg.LLM.Provider)
		assert.Equal(t, "oa-key", cfg.APIKey())
	})

	t.Run("WINDROSE_HOME moves the storage root", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvRoot, "/tmp/wr-test")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/tmp/wr-test", cfg.Storage.Root)
		assert.Equal(t, filepath.Join("/tmp/wr-test", "sessions"), cfg.SessionsDir())
		assert.Equal(t, filepath.Join("/tmp/wr-test", "logs"), cfg.LogsDir())
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid with key", func(c *Config) { c.LLM.AnthropicAPIKey = "k" }, ""},
		{"ollama needs no key", func(c *Config) { c.LLM.Provider = "ollama" }, ""},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "watson" }, "invalid LLM provider"},
		{"missing key", func(c *Config) {}, "no API key configured"},
		{"bad preset", func(c *Config) {
			c.LLM.AnthropicAPIKey = "k"
			c.Session.Preset = "galactic"
		}, "invalid default preset"},
		{"rounds floor", func(c *Config) {
			c.LLM.AnthropicAPIKey = "k"
			c.Session.Rounds = 0
		}, "rounds must be"},
		{"rounds ceiling", func(c *Config) {
			c.LLM.AnthropicAPIKey = "k"
			c.Session.Rounds = 11
		}, "rounds must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "deep", "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Provider = "ollama"
	cfg.LLM.Model = "llama3"
	cfg.Session.SkipInterrogate = true
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ollama", got.LLM.Provider)
	assert.Equal(t, "llama3", got.LLM.Model)
	assert.True(t, got.Session.SkipInterrogate)
}
