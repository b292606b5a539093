// Package llm holds the text-generation providers the insight layer can
// delegate to. Providers are plain string-in/string-out clients; schema
// enforcement happens upstream in the insight validator.
package llm

import (
	"context"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// Registry maps configured provider names to implementations and tracks
// the active selection.
type Registry struct {
	active    string
	providers map[string]Provider
}

// NewRegistry registers the built-in providers. activeName selects the
// default; an unknown name leaves the registry with no active provider,
// which callers treat as "rule-based only".
func NewRegistry(activeName string) *Registry {
	return &Registry{
		active: activeName,
		providers: map[string]Provider{
			"gemini": &GeminiProvider{},
			"openai": &OpenAIProvider{},
		},
	}
}

// Active returns the selected provider, or nil when none is configured.
func (r *Registry) Active() Provider {
	if r == nil {
		return nil
	}
	return r.providers[r.active]
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) Provider {
	return r.providers[name]
}
