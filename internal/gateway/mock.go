package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Mock is a scripted gateway for tests. Each call either returns the next
// scripted response, fails for a matching pattern, or echoes a canned reply.
type Mock struct {
	mu sync.Mutex

	// Reply is returned when no script entry matches. Defaults to a fixed
	// acknowledgement mentioning the call number.
	Reply string

	// FailOn makes calls whose user message contains the key fail with the
	// mapped error text.
	FailOn map[string]string

	// Delay is applied to every call before responding, to exercise
	// cancellation and parallelism.
	Delay time.Duration

	// TokensPerCall overrides the reported token count (default 10).
	TokensPerCall int

	calls []Request
}

// Provider returns the provider identifier.
func (m *Mock) Provider() string { return "mock" }

// Complete returns the scripted response for req.
func (m *Mock) Complete(ctx context.Context, req Request) (Response, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return Response{}, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	m.mu.Lock()
	m.calls = append(m.calls, req)
	n := len(m.calls)
	m.mu.Unlock()

	for pattern, msg := range m.FailOn {
		if strings.Contains(req.User, pattern) || strings.Contains(req.System, pattern) {
			return Response{}, fmt.Errorf("mock failure: %s", msg)
		}
	}

	tokens := m.TokensPerCall
	if tokens == 0 {
		tokens = 10
	}
	text := m.Reply
	if text == "" {
		text = fmt.Sprintf("mock response %d", n)
	}
	return Response{Text: text, Tokens: tokens}, nil
}

// Calls returns a copy of the recorded requests.
func (m *Mock) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of completed or failed calls.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
