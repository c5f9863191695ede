package main

import (
	"context"
	"fmt"

	"windrose/internal/engine"
	"windrose/internal/gateway"
	"windrose/internal/logging"
	"windrose/internal/store"
	"windrose/internal/types"
)

// app bundles the wired services a command needs. Built per invocation from
// the loaded config; the audit log is best-effort and may be nil.
type app struct {
	store  *store.FileStore
	audit  *store.AuditLog
	client gateway.Client
}

// newApp wires the session store and audit log. Commands that never call the
// gateway (list, show, export) use this.
func newApp() (*app, error) {
	fs, err := store.NewFileStore(cfg.SessionsDir())
	if err != nil {
		return nil, err
	}
	audit, err := store.OpenAuditLog(cfg.SessionsDir())
	if err != nil {
		logging.StoreWarn("audit log unavailable: %v", err)
		audit = nil
	}
	return &app{store: fs, audit: audit}, nil
}

// newAppWithGateway additionally wires the LLM client, validating that the
// provider is usable first.
func newAppWithGateway(ctx context.Context) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a, err := newApp()
	if err != nil {
		return nil, err
	}
	client, err := gateway.NewClient(ctx, cfg.LLM.Provider, cfg.LLM.Model, gateway.ProviderSettings{
		APIKey:  cfg.APIKey(),
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.GetLLMTimeout(),
	})
	if err != nil {
		return nil, err
	}
	a.client = client
	return a, nil
}

// newEngine builds the phase engine over the app's services.
func (a *app) newEngine(skipInterrogate bool) *engine.Engine {
	opts := []engine.Option{
		engine.WithCallTimeout(cfg.GetLLMTimeout()),
		engine.WithMaxTokens(cfg.LLM.MaxTokens),
	}
	if a.audit != nil {
		opts = append(opts, engine.WithAuditLog(a.audit))
	}
	if skipInterrogate {
		opts = append(opts, engine.WithSkipInterrogate())
	}
	return engine.New(a.store, a.client, opts...)
}

func (a *app) close() {
	if a.audit != nil {
		_ = a.audit.Close()
	}
}

// shortID renders the first UUID group for compact listings.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate shortens s to n runes for table display.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// requireSession fetches a session by full id or the short prefix listings
// print, or returns a uniform error.
func (a *app) requireSession(id string) (*types.Session, error) {
	s, err := store.FindByRef(a.store, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("session %s not found (use 'windrose sessions list')", id)
	}
	return s, nil
}
