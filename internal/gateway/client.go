// Package gateway provides the LLM provider adapters behind a single Client
// interface. The engine treats a Client as an opaque async function: it either
// returns usable text or fails with a descriptive error.
package gateway

import (
	"context"
	"time"
)

// Request is one completion call.
type Request struct {
	System    string
	User      string
	MaxTokens int

	// Reasoning asks providers that support it to emit chain-of-thought in
	// <think></think> tags. Adapters that cannot honor it ignore it.
	Reasoning bool
}

// Response is the result of a completion call. Tokens is the
// provider-reported total token count, or the adapter's best-effort estimate
// when the provider does not report one.
type Response struct {
	Text   string
	Tokens int
}

// Client is the gateway contract consumed by the phase engine.
type Client interface {
	// Complete issues one completion call. Implementations honor ctx
	// cancellation and deadlines.
	Complete(ctx context.Context, req Request) (Response, error)

	// Provider returns the provider identifier for error reporting.
	Provider() string
}

// DefaultMaxTokens is applied when the caller leaves Request.MaxTokens zero.
const DefaultMaxTokens = 2048

// DefaultTimeout bounds a single call when the engine context carries no
// deadline of its own.
const DefaultTimeout = 3 * time.Minute

// estimateTokens approximates a token count when the provider reports none.
// Four characters per token is the usual rough cut for English prose.
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}

// ensureDeadline applies the default timeout when ctx has none.
func ensureDeadline(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
