package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"windrose/internal/logging"
)

// OpenAIConfig configures the OpenAI adapter. Any OpenAI-compatible endpoint
// works by overriding BaseURL, which is how custom providers are wired.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DefaultOpenAIConfig returns sensible defaults.
func DefaultOpenAIConfig(apiKey, model string) OpenAIConfig {
	return OpenAIConfig{
		APIKey:  apiKey,
		BaseURL: "https://api.openai.com/v1",
		Model:   model,
		Timeout: DefaultTimeout,
	}
}

// OpenAIClient implements Client for the chat completions API.
type OpenAIClient struct {
	cfg        OpenAIConfig
	provider   string
	httpClient *http.Client
}

// NewOpenAIClient creates an OpenAI adapter.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	return newOpenAICompatible(cfg, "openai")
}

// NewCustomClient creates an adapter for an OpenAI-compatible custom
// endpoint. The base URL is required; the API key may be empty for
// unauthenticated local endpoints.
func NewCustomClient(cfg OpenAIConfig) *OpenAIClient {
	return newOpenAICompatible(cfg, "custom")
}

func newOpenAICompatible(cfg OpenAIConfig, provider string) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &OpenAIClient{
		cfg:        cfg,
		provider:   provider,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Provider returns the provider identifier.
func (c *OpenAIClient) Provider() string { return c.provider }

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_completion_tokens,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one chat-completions call.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := ensureDeadline(ctx, c.cfg.Timeout)
	defer cancel()

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	messages := make([]openAIMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.User})

	body := openAIRequest{Model: c.cfg.Model, Messages: messages, MaxTokens: maxTokens}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("%s: failed to marshal request: %w", c.provider, err)
	}

	start := time.Now()
	logging.Gateway("[%s] call model=%s user_len=%d", c.provider, c.cfg.Model, len(req.User))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return Response{}, fmt.Errorf("%s: failed to create request: %w", c.provider, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logging.GatewayError("[%s] request failed after %v: %v", c.provider, time.Since(start), err)
		return Response{}, fmt.Errorf("%s: request failed: %w", c.provider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("%s: failed to read response: %w", c.provider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("%s: API returned status %d: %s", c.provider, resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Response{}, fmt.Errorf("%s: failed to parse response: %w", c.provider, err)
	}
	if parsed.Error != nil {
		return Response{}, fmt.Errorf("%s: API error: %s", c.provider, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return Response{}, fmt.Errorf("%s: no completion returned", c.provider)
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	tokens := parsed.Usage.TotalTokens
	if tokens == 0 {
		tokens = estimateTokens(req.System+req.User) + estimateTokens(text)
	}

	logging.Gateway("[%s] completed in %v response_len=%d tokens=%d", c.provider, time.Since(start), len(text), tokens)
	return Response{Text: text, Tokens: tokens}, nil
}
