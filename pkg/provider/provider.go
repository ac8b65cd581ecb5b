// Package provider abstracts the remote LLM completion service. The
// core makes exactly one synchronous round trip per question: no
// retries, no caching, no rate limiting.
package provider

import (
	"context"
	"fmt"

	"github.com/harun/askd/internal/config"
)

// Provider is an interface for LLM completion providers.
type Provider interface {
	// Answer sends a fully contextualized question and returns the
	// provider's single text answer.
	Answer(ctx context.Context, question string) (string, error)

	// Name returns the provider name.
	Name() string
}

// SystemSource supplies the current system prompt at call time, so a
// hot-reloaded prompt takes effect without rebuilding the provider.
type SystemSource interface {
	Current() string
}

// ProviderError wraps a failed completion call with a human-readable
// message.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// New creates a provider from configuration. Construction fails when
// required settings are absent so the process refuses to serve traffic
// with a half-configured provider.
func New(cfg config.ProviderConfig, system SystemSource) (Provider, error) {
	if system == nil {
		return nil, fmt.Errorf("system prompt source is required")
	}

	switch cfg.Kind {
	case config.ProviderAzureOpenAI:
		return NewAzureOpenAI(cfg, system)
	case config.ProviderAnthropic:
		return NewAnthropic(cfg, system)
	default:
		return nil, fmt.Errorf("unsupported provider kind: %s", cfg.Kind)
	}
}
