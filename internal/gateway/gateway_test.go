package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"windrose/internal/types"
)

func TestFactoryUnknownProvider(t *testing.T) {
	_, err := NewClient(context.Background(), "mystery", "m", ProviderSettings{})
	var ve *types.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("NewClient(unknown) = %v, want *types.ValidationError", err)
	}
}

func TestFactoryCustomRequiresBaseURL(t *testing.T) {
	_, err := NewClient(context.Background(), "custom", "m", ProviderSettings{})
	var ve *types.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("custom without base URL = %v, want *types.ValidationError", err)
	}
}

func TestAnthropicComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-api-key"))

		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "sys", req.System)

		resp := map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": "hello there"}},
			"usage":   map[string]int{"input_tokens": 12, "output_tokens": 8},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewAnthropicClient(AnthropicConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "m"})
	got, err := c.Complete(context.Background(), Request{System: "sys", User: "hi"})
	require.NoError(t, err)
	require.Equal(t, "hello there", got.Text)
	require.Equal(t, 20, got.Tokens)
}

func TestAnthropicErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(AnthropicConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	_, err := c.Complete(context.Background(), Request{User: "hi"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 500")
}

func TestOpenAIEstimatesTokensWhenUsageMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "four char toks"}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	got, err := c.Complete(context.Background(), Request{User: "12345678"})
	require.NoError(t, err)
	require.Equal(t, "four char toks", got.Text)
	require.Greater(t, got.Tokens, 0)
}

func TestMockHonorsCancellation(t *testing.T) {
	m := &Mock{Delay: time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.Complete(ctx, Request{User: "hi"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMockFailOn(t *testing.T) {
	m := &Mock{FailOn: map[string]string{"trigger": "scripted"}}
	_, err := m.Complete(context.Background(), Request{User: "has trigger inside"})
	require.Error(t, err)

	got, err := m.Complete(context.Background(), Request{User: "clean"})
	require.NoError(t, err)
	require.NotEmpty(t, got.Text)
	require.Equal(t, 2, m.CallCount())
}
