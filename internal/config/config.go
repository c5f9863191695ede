// Package config loads windrose configuration from ~/.windrose/config.yaml
// with environment overrides. Missing files are not an error: the zero
// config plus defaults is a working setup for any provider whose API key is
// in the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"windrose/internal/personas"
)

// Config holds all windrose configuration.
type Config struct {
	// LLM provider selection and credentials.
	LLM LLMConfig `yaml:"llm"`

	// Session defaults applied when flags are omitted.
	Session SessionConfig `yaml:"session"`

	// Storage paths.
	Storage StorageConfig `yaml:"storage"`

	// Logging.
	Logging LoggingConfig `yaml:"logging"`

	// Export defaults.
	Export ExportConfig `yaml:"export"`
}

// LLMConfig configures the gateway.
type LLMConfig struct {
	Provider string `yaml:"provider"` // anthropic, openai, gemini, ollama, custom
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`

	MaxTokens int `yaml:"max_tokens"`

	// API keys per provider. Environment variables take precedence.
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	CustomAPIKey    string `yaml:"custom_api_key"`
}

// SessionConfig holds per-session defaults.
type SessionConfig struct {
	Preset          string `yaml:"preset"`
	Rounds          int    `yaml:"rounds"`
	SkipInterrogate bool   `yaml:"skip_interrogate"`
}

// StorageConfig holds filesystem locations.
type StorageConfig struct {
	// Root is the windrose home directory. Session files live in
	// Root/sessions, logs in Root/logs, the audit database at
	// Root/sessions/audit.db.
	Root string `yaml:"root"`
}

// LoggingConfig configures the category loggers.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"` // debug, info, warn, error
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	Format string `yaml:"format"` // markdown, json, text, html
	OutDir string `yaml:"out_dir"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:  "anthropic",
			Model:     "claude-sonnet-4-20250514",
			Timeout:   "180s",
			MaxTokens: 2048,
		},
		Session: SessionConfig{
			Preset: "balanced",
			Rounds: 2,
		},
		Storage: StorageConfig{
			Root: defaultRoot(),
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
		Export: ExportConfig{
			Format: "markdown",
			OutDir: ".",
		},
	}
}

// defaultRoot resolves ~/.windrose, falling back to a relative directory when
// the home directory cannot be determined.
func defaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".windrose"
	}
	return filepath.Join(home, ".windrose")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(defaultRoot(), "config.yaml")
}

// Load reads configuration from a YAML file, layering environment overrides
// on top. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes configuration to a YAML file, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// SessionsDir returns the session file directory under the storage root.
func (c *Config) SessionsDir() string {
	return filepath.Join(c.Storage.Root, "sessions")
}

// LogsDir returns the log directory under the storage root.
func (c *Config) LogsDir() string {
	return filepath.Join(c.Storage.Root, "logs")
}

// GetLLMTimeout returns the per-call LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 180 * time.Second
	}
	return d
}

// APIKey returns the configured key for the active provider.
func (c *Config) APIKey() string {
	switch c.LLM.Provider {
	case "anthropic":
		return c.LLM.AnthropicAPIKey
	case "openai":
		return c.LLM.OpenAIAPIKey
	case "gemini":
		return c.LLM.GeminiAPIKey
	case "custom":
		return c.LLM.CustomAPIKey
	default:
		// ollama runs keyless.
		return ""
	}
}

// ValidProviders lists the supported LLM providers.
var ValidProviders = []string{"anthropic", "openai", "gemini", "ollama", "custom"}

// Validate checks the configuration is runnable.
func (c *Config) Validate() error {
	valid := false
	for _, p := range ValidProviders {
		if c.LLM.Provider == p {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}
	if c.LLM.Provider != "ollama" && c.APIKey() == "" {
		return fmt.Errorf("no API key configured for provider %s (set %s or add it to the config file)",
			c.LLM.Provider, envKeyName(c.LLM.Provider))
	}
	if !personas.ValidPreset(c.Session.Preset) {
		return fmt.Errorf("invalid default preset: %s (valid: %v)", c.Session.Preset, personas.PresetNames())
	}
	if c.Session.Rounds < 1 || c.Session.Rounds > 10 {
		return fmt.Errorf("session rounds must be between 1 and 10, got %d", c.Session.Rounds)
	}
	return nil
}
