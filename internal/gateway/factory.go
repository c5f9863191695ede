package gateway

import (
	"context"
	"fmt"
	"time"

	"windrose/internal/types"
)

// ProviderSettings carries the per-provider credentials and endpoints pulled
// from config by the caller.
type ProviderSettings struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewClient builds the adapter for a provider id. Unknown providers fail
// with *types.ValidationError so the CLI can report them before any session
// is created.
func NewClient(ctx context.Context, provider, model string, settings ProviderSettings) (Client, error) {
	switch provider {
	case "anthropic":
		cfg := DefaultAnthropicConfig(settings.APIKey, model)
		if settings.BaseURL != "" {
			cfg.BaseURL = settings.BaseURL
		}
		if settings.Timeout != 0 {
			cfg.Timeout = settings.Timeout
		}
		return NewAnthropicClient(cfg), nil
	case "openai":
		cfg := DefaultOpenAIConfig(settings.APIKey, model)
		if settings.BaseURL != "" {
			cfg.BaseURL = settings.BaseURL
		}
		if settings.Timeout != 0 {
			cfg.Timeout = settings.Timeout
		}
		return NewOpenAIClient(cfg), nil
	case "gemini":
		return NewGeminiClient(ctx, GeminiConfig{APIKey: settings.APIKey, Model: model, Timeout: settings.Timeout})
	case "ollama":
		cfg := DefaultOllamaConfig(model)
		if settings.BaseURL != "" {
			cfg.BaseURL = settings.BaseURL
		}
		if settings.Timeout != 0 {
			cfg.Timeout = settings.Timeout
		}
		return NewOllamaClient(cfg), nil
	case "custom":
		if settings.BaseURL == "" {
			return nil, &types.ValidationError{Field: "provider", Reason: "custom provider requires a base URL"}
		}
		return NewCustomClient(OpenAIConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   model,
			Timeout: settings.Timeout,
		}), nil
	default:
		return nil, &types.ValidationError{
			Field:  "provider",
			Reason: fmt.Sprintf("unknown provider %q (valid: anthropic, openai, gemini, ollama, custom)", provider),
		}
	}
}

// Providers lists the supported provider identifiers.
func Providers() []string {
	return []string{"anthropic", "openai", "gemini", "ollama", "custom"}
}
