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

// AnthropicConfig configures the Anthropic adapter.
type AnthropicConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DefaultAnthropicConfig returns sensible defaults.
func DefaultAnthropicConfig(apiKey, model string) AnthropicConfig {
	return AnthropicConfig{
		APIKey:  apiKey,
		BaseURL: "https://api.anthropic.com/v1",
		Model:   model,
		Timeout: DefaultTimeout,
	}
}

// AnthropicClient implements Client for the Anthropic messages API.
type AnthropicClient struct {
	cfg        AnthropicConfig
	httpClient *http.Client
}

// NewAnthropicClient creates an Anthropic adapter.
func NewAnthropicClient(cfg AnthropicConfig) *AnthropicClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &AnthropicClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Provider returns the provider identifier.
func (c *AnthropicClient) Provider() string { return "anthropic" }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one messages-API call.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := ensureDeadline(ctx, c.cfg.Timeout)
	defer cancel()

	if c.cfg.APIKey == "" {
		return Response{}, fmt.Errorf("anthropic: API key not configured")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	body := anthropicRequest{
		Model:     c.cfg.Model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages:  []anthropicMessage{{Role: "user", Content: req.User}},
	}

	start := time.Now()
	logging.Gateway("[anthropic] call model=%s system_len=%d user_len=%d", c.cfg.Model, len(req.System), len(req.User))

	jsonData, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("anthropic: failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/messages", bytes.NewReader(jsonData))
	if err != nil {
		return Response{}, fmt.Errorf("anthropic: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logging.GatewayError("[anthropic] request failed after %v: %v", time.Since(start), err)
		return Response{}, fmt.Errorf("anthropic: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("anthropic: failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		logging.GatewayError("[anthropic] status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
		return Response{}, fmt.Errorf("anthropic: API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Response{}, fmt.Errorf("anthropic: failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return Response{}, fmt.Errorf("anthropic: API error: %s", parsed.Error.Message)
	}
	if len(parsed.Content) == 0 {
		return Response{}, fmt.Errorf("anthropic: no completion returned")
	}

	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	tokens := parsed.Usage.InputTokens + parsed.Usage.OutputTokens
	if tokens == 0 {
		tokens = estimateTokens(req.System+req.User) + estimateTokens(text)
	}

	logging.Gateway("[anthropic] completed in %v response_len=%d tokens=%d", time.Since(start), len(text), tokens)
	return Response{Text: text, Tokens: tokens}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
