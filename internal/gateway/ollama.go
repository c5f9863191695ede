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

// OllamaConfig configures the local Ollama adapter.
type OllamaConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DefaultOllamaConfig returns defaults for a local daemon.
func DefaultOllamaConfig(model string) OllamaConfig {
	return OllamaConfig{
		BaseURL: "http://localhost:11434",
		Model:   model,
		Timeout: DefaultTimeout,
	}
}

// OllamaClient implements Client for a local Ollama daemon.
type OllamaClient struct {
	cfg        OllamaConfig
	httpClient *http.Client
}

// NewOllamaClient creates an Ollama adapter.
func NewOllamaClient(cfg OllamaConfig) *OllamaClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &OllamaClient{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Timeout}}
}

// Provider returns the provider identifier.
func (c *OllamaClient) Provider() string { return "ollama" }

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	Error           string `json:"error"`
}

// Complete sends one /api/chat call with streaming disabled.
func (c *OllamaClient) Complete(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := ensureDeadline(ctx, c.cfg.Timeout)
	defer cancel()

	messages := make([]openAIMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.User})

	jsonData, err := json.Marshal(ollamaChatRequest{Model: c.cfg.Model, Messages: messages, Stream: false})
	if err != nil {
		return Response{}, fmt.Errorf("ollama: failed to marshal request: %w", err)
	}

	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/chat", bytes.NewReader(jsonData))
	if err != nil {
		return Response{}, fmt.Errorf("ollama: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logging.GatewayError("[ollama] request failed after %v: %v", time.Since(start), err)
		return Response{}, fmt.Errorf("ollama: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("ollama: failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("ollama: API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed ollamaChatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Response{}, fmt.Errorf("ollama: failed to parse response: %w", err)
	}
	if parsed.Error != "" {
		return Response{}, fmt.Errorf("ollama: API error: %s", parsed.Error)
	}

	text := strings.TrimSpace(parsed.Message.Content)
	if text == "" {
		return Response{}, fmt.Errorf("ollama: no completion returned")
	}
	tokens := parsed.PromptEvalCount + parsed.EvalCount
	if tokens == 0 {
		tokens = estimateTokens(req.System+req.User) + estimateTokens(text)
	}

	logging.Gateway("[ollama] completed in %v response_len=%d tokens=%d", time.Since(start), len(text), tokens)
	return Response{Text: text, Tokens: tokens}, nil
}
