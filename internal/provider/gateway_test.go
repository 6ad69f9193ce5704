package provider

import (
	"context"
	"errors"
	"testing"
)

// fakeProvider is an in-process LLMProvider for gateway tests.
type fakeProvider struct {
	name  string
	fail  bool
	calls int
}

func (f *fakeProvider) Name() string                { return f.name }
func (f *fakeProvider) DefaultModel() string        { return f.name + "-default" }
func (f *fakeProvider) EstimateTokens(s string) int { return EstimateTokens(s) }

func (f *fakeProvider) GenerateText(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("simulated failure")
	}
	return &GenerateResult{
		Text:       "response from " + f.name,
		Provider:   f.name,
		Model:      req.Model,
		TokensUsed: f.EstimateTokens(req.Prompt),
	}, nil
}

func TestGatewayPreferredFallsThrough(t *testing.T) {
	preferred := &fakeProvider{name: "openai", fail: true}
	fallback := &fakeProvider{name: "anthropic"}

	g := NewGateway(0)
	g.Register(fallback)
	g.Register(preferred)

	result, err := g.GenerateText(context.Background(), "hello", Options{PreferredProvider: "openai"})
	if err != nil {
		t.Fatalf("GenerateText() error: %v", err)
	}
	if result.Provider != "anthropic" {
		t.Errorf("expected fallback result, got provider %q", result.Provider)
	}
	if preferred.calls != 1 {
		t.Errorf("expected preferred provider attempted exactly once, got %d", preferred.calls)
	}
	if fallback.calls != 1 {
		t.Errorf("expected fallback attempted exactly once, got %d", fallback.calls)
	}
}

func TestGatewayAllProvidersFail(t *testing.T) {
	a := &fakeProvider{name: "openai", fail: true}
	b := &fakeProvider{name: "anthropic", fail: true}
	c := &fakeProvider{name: "gemini", fail: true}

	g := NewGateway(0)
	g.Register(a)
	g.Register(b)
	g.Register(c)

	_, err := g.GenerateText(context.Background(), "hello", Options{})
	if err == nil {
		t.Fatalf("expected error when all providers fail")
	}
	var exhausted *AllProvidersFailedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected AllProvidersFailedError, got %T: %v", err, err)
	}
	if len(exhausted.Attempts) != 3 {
		t.Errorf("expected 3 attempts, got %d", len(exhausted.Attempts))
	}
	for _, p := range []*fakeProvider{a, b, c} {
		if p.calls != 1 {
			t.Errorf("provider %s attempted %d times, want 1", p.name, p.calls)
		}
	}
}

func TestGatewayUnknownPreferredIsIgnored(t *testing.T) {
	a := &fakeProvider{name: "openai"}
	g := NewGateway(0)
	g.Register(a)

	result, err := g.GenerateText(context.Background(), "hi", Options{PreferredProvider: "nope"})
	if err != nil {
		t.Fatalf("GenerateText() error: %v", err)
	}
	if result.Provider != "openai" {
		t.Errorf("expected openai result, got %q", result.Provider)
	}
}

func TestGatewayDefaults(t *testing.T) {
	var captured *GenerateRequest
	a := &capturingProvider{name: "openai", captured: &captured}
	g := NewGateway(0)
	g.Register(a)

	if _, err := g.GenerateText(context.Background(), "hi", Options{}); err != nil {
		t.Fatalf("GenerateText() error: %v", err)
	}
	if captured.MaxTokens != 1000 {
		t.Errorf("expected default maxTokens 1000, got %d", captured.MaxTokens)
	}
	if captured.Temperature != 0.7 {
		t.Errorf("expected default temperature 0.7, got %v", captured.Temperature)
	}
}

type capturingProvider struct {
	name     string
	captured **GenerateRequest
}

func (c *capturingProvider) Name() string                { return c.name }
func (c *capturingProvider) DefaultModel() string        { return "m" }
func (c *capturingProvider) EstimateTokens(s string) int { return EstimateTokens(s) }

func (c *capturingProvider) GenerateText(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	*c.captured = req
	return &GenerateResult{Text: "ok", Provider: c.name}, nil
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens("abcdefgh"); got != 2 {
		t.Errorf("expected 2 tokens for 8 chars, got %d", got)
	}
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("expected 0 tokens for empty text, got %d", got)
	}
}
