package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"windrose/internal/logging"
)

// GeminiConfig configures the Gemini adapter.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GeminiClient implements Client over the Google GenAI SDK.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClient creates a Gemini adapter.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.Model, timeout: cfg.Timeout}, nil
}

// Provider returns the provider identifier.
func (c *GeminiClient) Provider() string { return "gemini" }

// Complete sends one GenerateContent call.
func (c *GeminiClient) Complete(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := ensureDeadline(ctx, c.timeout)
	defer cancel()

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	start := time.Now()
	logging.Gateway("[gemini] call model=%s user_len=%d", c.model, len(req.User))

	contents := []*genai.Content{genai.NewContentFromText(req.User, genai.RoleUser)}
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		logging.GatewayError("[gemini] request failed after %v: %v", time.Since(start), err)
		return Response{}, fmt.Errorf("gemini: request failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return Response{}, fmt.Errorf("gemini: no completion returned")
	}

	tokens := 0
	if result.UsageMetadata != nil {
		tokens = int(result.UsageMetadata.TotalTokenCount)
	}
	if tokens == 0 {
		tokens = estimateTokens(req.System+req.User) + estimateTokens(text)
	}

	logging.Gateway("[gemini] completed in %v response_len=%d tokens=%d", time.Since(start), len(text), tokens)
	return Response{Text: text, Tokens: tokens}, nil
}
