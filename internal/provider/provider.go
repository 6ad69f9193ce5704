// Package provider implements LLM provider clients and the fallback gateway.
package provider

import (
	"context"
)

// LLMProvider is the interface for text generation backends.
type LLMProvider interface {
	// GenerateText sends a generation request and returns the response.
	GenerateText(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)
	// EstimateTokens returns a cheap token estimate for text without a network call.
	EstimateTokens(text string) int
	// Name returns the canonical provider name.
	Name() string
	// DefaultModel returns the configured default model.
	DefaultModel() string
}

// GenerateRequest contains the parameters for a generation request.
type GenerateRequest struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// GenerateResult contains the response from a generation request.
type GenerateResult struct {
	Text       string
	Provider   string
	Model      string
	TokensUsed int
	Cost       float64
	Metadata   map[string]any
}

// Cost priority tiers map to a concrete model per provider.
const (
	PriorityFast     = "fast"
	PriorityBalanced = "balanced"
	PriorityQuality  = "quality"
)

// EstimateTokens approximates token count as character count divided by four.
// Providers fall back to this figure when the API response omits usage, so
// estimate and post-call numbers stay consistent.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// ProviderError is returned when a provider cannot be constructed.
type ProviderError struct {
	Provider string
	Hint     string
}

func (e *ProviderError) Error() string {
	return "provider \"" + e.Provider + "\": " + e.Hint
}
