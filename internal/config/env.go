package config

import "os"

// Environment variables recognized by windrose. Provider-specific keys use
// the vendor's conventional names so existing shells keep working; the
// WINDROSE_* variables override file settings without touching vendor keys.
const (
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvGeminiKey    = "GEMINI_API_KEY"
	EnvCustomKey    = "WINDROSE_CUSTOM_API_KEY"

	EnvProvider = "WINDROSE_PROVIDER"
	EnvModel    = "WINDROSE_MODEL"
	EnvBaseURL  = "WINDROSE_BASE_URL"
	EnvRoot     = "WINDROSE_HOME"
	EnvLogLevel = "WINDROSE_LOG_LEVEL"
)

// envKeyName returns the environment variable a provider's key is read from.
func envKeyName(provider string) string {
	switch provider {
	case "anthropic":
		return EnvAnthropicKey
	case "openai":
		return EnvOpenAIKey
	case "gemini":
		return EnvGeminiKey
	case "custom":
		return EnvCustomKey
	default:
		return ""
	}
}

// applyEnvOverrides layers environment variables over the file settings.
// Keys only fill the matching provider slot; they never switch the active
// provider, so exporting ANTHROPIC_API_KEY for another tool does not hijack
// a gemini setup.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv(EnvAnthropicKey); key != "" {
		c.LLM.AnthropicAPIKey = key
	}
	if key := os.Getenv(EnvOpenAIKey); key != "" {
		c.LLM.OpenAIAPIKey = key
	}
	if key := os.Getenv(EnvGeminiKey); key != "" {
		c.LLM.GeminiAPIKey = key
	}
	if key := os.Getenv(EnvCustomKey); key != "" {
		c.LLM.CustomAPIKey = key
	}

	if provider := os.Getenv(EnvProvider); provider != "" {
		c.LLM.Provider = provider
	}
	if model := os.Getenv(EnvModel); model != "" {
		c.LLM.Model = model
	}
	if url := os.Getenv(EnvBaseURL); url != "" {
		c.LLM.BaseURL = url
	}
	if root := os.Getenv(EnvRoot); root != "" {
		c.Storage.Root = root
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
}
