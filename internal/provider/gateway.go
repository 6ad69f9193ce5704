package provider

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Options controls a single gateway generation call.
type Options struct {
	MaxTokens         int     // default 1000
	Temperature       float64 // default 0.7 when zero
	Model             string  // explicit model override
	CostPriority      string  // fast | balanced | quality
	PreferredProvider string  // provider name to try first
}

// ProviderAttempt records one failed provider try within a gateway call.
type ProviderAttempt struct {
	Provider string
	Err      error
}

// AllProvidersFailedError is returned when every provider in the fallback
// chain has failed for a single call.
type AllProvidersFailedError struct {
	Attempts []ProviderAttempt
}

func (e *AllProvidersFailedError) Error() string {
	names := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		names[i] = a.Provider
	}
	return "all providers exhausted: " + strings.Join(names, ", ")
}

// TierModeler is an optional interface for providers that map cost priority
// tiers to concrete models. Callers use type assertion, not all providers
// implement it.
type TierModeler interface {
	ModelForTier(tier string) string
}

// Gateway provides uniform text generation with ordered provider fallback.
// Fallback is strictly sequential: each candidate runs to completion or
// failure before the next is attempted.
type Gateway struct {
	order     []string
	providers map[string]LLMProvider
	timeout   time.Duration
}

// NewGateway creates a gateway with the given per-call timeout (30s when zero).
func NewGateway(timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{
		providers: map[string]LLMProvider{},
		timeout:   timeout,
	}
}

// Register adds a provider to the end of the fallback order.
func (g *Gateway) Register(p LLMProvider) {
	name := p.Name()
	if _, exists := g.providers[name]; !exists {
		g.order = append(g.order, name)
	}
	g.providers[name] = p
}

// Provider returns a registered provider by name.
func (g *Gateway) Provider(name string) (LLMProvider, bool) {
	p, ok := g.providers[name]
	return p, ok
}

// ProviderNames returns the registered providers in fallback order.
func (g *Gateway) ProviderNames() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// GenerateText tries each provider in order until one succeeds. A provider
// failure never surfaces to the caller unless every provider has failed.
// No provider is retried with the same input within a single call.
func (g *Gateway) GenerateText(ctx context.Context, prompt string, opts Options) (*GenerateResult, error) {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1000
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.7
	}

	failed := &AllProvidersFailedError{}
	for _, name := range g.attemptOrder(opts.PreferredProvider) {
		p := g.providers[name]
		req := &GenerateRequest{
			Prompt:      prompt,
			Model:       opts.Model,
			MaxTokens:   opts.MaxTokens,
			Temperature: opts.Temperature,
		}
		if req.Model == "" && opts.CostPriority != "" {
			if tm, ok := p.(TierModeler); ok {
				req.Model = tm.ModelForTier(opts.CostPriority)
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		result, err := p.GenerateText(callCtx, req)
		cancel()
		if err != nil {
			slog.Warn("Provider failed, trying next", "provider", name, "error", err)
			failed.Attempts = append(failed.Attempts, ProviderAttempt{Provider: name, Err: err})
			continue
		}
		return result, nil
	}
	return nil, failed
}

// attemptOrder builds the provider try list: preferred first (if registered),
// then the remaining providers in registration order.
func (g *Gateway) attemptOrder(preferred string) []string {
	preferred = strings.TrimSpace(preferred)
	if _, ok := g.providers[preferred]; !ok {
		preferred = ""
	}
	order := make([]string, 0, len(g.order))
	if preferred != "" {
		order = append(order, preferred)
	}
	for _, name := range g.order {
		if name != preferred {
			order = append(order, name)
		}
	}
	return order
}
