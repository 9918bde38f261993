package llm

import (
	"context"
	"log/slog"

	"github.com/sozercan/thesis-ai/internal/config"
)

// Backends holds one client per provider that has credentials configured.
type Backends map[string]Backend

// NewBackends constructs a backend for every provider with an API key.
// Providers without credentials are left out rather than treated as errors.
func NewBackends(ctx context.Context, cfg *config.Config) (Backends, error) {
	backends := Backends{}

	if cfg.Gemini.APIKey != "" {
		g, err := NewGemini(ctx, &cfg.Gemini)
		if err != nil {
			return nil, err
		}
		backends[g.Name()] = g
	}
	if cfg.OpenAI.APIKey != "" {
		o, err := NewOpenAI(&cfg.OpenAI)
		if err != nil {
			backends.Close()
			return nil, err
		}
		backends[o.Name()] = o
	}
	if cfg.Anthropic.APIKey != "" {
		a, err := NewAnthropic(&cfg.Anthropic)
		if err != nil {
			backends.Close()
			return nil, err
		}
		backends[a.Name()] = a
	}

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slog.Info("LLM backends configured", "providers", names)
	return backends, nil
}

// Close releases clients that hold connections.
func (b Backends) Close() {
	for name, backend := range b {
		if c, ok := backend.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				slog.Warn("failed to close LLM backend", "provider", name, "error", err)
			}
		}
	}
}
