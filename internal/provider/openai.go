package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIProvider implements LLMProvider using the OpenAI-compatible chat API.
// The Anthropic backend is served through the same client with its own API
// base, model tiers, and pricing.
type OpenAIProvider struct {
	name         string
	apiKey       string
	apiBase      string
	defaultModel string
	tierModels   map[string]string
	pricing      map[string]float64 // USD per 1K tokens
	httpClient   *http.Client
}

// NewOpenAIProvider creates the OpenAI backend client.
func NewOpenAIProvider(apiKey, apiBase string) *OpenAIProvider {
	if apiBase == "" {
		apiBase = "https://api.openai.com/v1"
	}
	return &OpenAIProvider{
		name:         "openai",
		apiKey:       apiKey,
		apiBase:      strings.TrimSuffix(apiBase, "/"),
		defaultModel: "gpt-4o",
		tierModels: map[string]string{
			PriorityFast:     "gpt-4o-mini",
			PriorityBalanced: "gpt-4o",
			PriorityQuality:  "gpt-4.1",
		},
		pricing: map[string]float64{
			"gpt-4o-mini": 0.0006,
			"gpt-4o":      0.01,
			"gpt-4.1":     0.012,
		},
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// NewAnthropicProvider creates the Anthropic backend client. Anthropic exposes
// an OpenAI-compatible chat surface, so only base URL, models, and pricing differ.
func NewAnthropicProvider(apiKey, apiBase string) *OpenAIProvider {
	if apiBase == "" {
		apiBase = "https://api.anthropic.com/v1"
	}
	return &OpenAIProvider{
		name:         "anthropic",
		apiKey:       apiKey,
		apiBase:      strings.TrimSuffix(apiBase, "/"),
		defaultModel: "claude-sonnet-4-5",
		tierModels: map[string]string{
			PriorityFast:     "claude-haiku-4-5",
			PriorityBalanced: "claude-sonnet-4-5",
			PriorityQuality:  "claude-opus-4-1",
		},
		pricing: map[string]float64{
			"claude-haiku-4-5":  0.004,
			"claude-sonnet-4-5": 0.015,
			"claude-opus-4-1":   0.075,
		},
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Name returns the canonical provider name.
func (p *OpenAIProvider) Name() string { return p.name }

// DefaultModel returns the configured default model.
func (p *OpenAIProvider) DefaultModel() string { return p.defaultModel }

// ModelForTier returns the concrete model for a cost priority tier.
func (p *OpenAIProvider) ModelForTier(tier string) string {
	if m, ok := p.tierModels[tier]; ok {
		return m
	}
	return p.defaultModel
}

// EstimateTokens returns a cheap token estimate for text.
func (p *OpenAIProvider) EstimateTokens(text string) int {
	return EstimateTokens(text)
}

// GenerateText sends a completion request to the OpenAI-compatible API.
func (p *OpenAIProvider) GenerateText(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	if p.apiKey == "" {
		return nil, &ProviderError{Provider: p.name, Hint: "set providers." + p.name + ".apiKey in config"}
	}
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	body := map[string]any{
		"model":       model,
		"messages":    []map[string]any{{"role": "user", "content": req.Prompt}},
		"max_tokens":  req.MaxTokens,
		"temperature": req.Temperature,
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.apiBase+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp openAIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	text := apiResp.Choices[0].Message.Content
	tokens := apiResp.Usage.TotalTokens
	if tokens == 0 {
		tokens = p.EstimateTokens(req.Prompt) + p.EstimateTokens(text)
	}
	return &GenerateResult{
		Text:       text,
		Provider:   p.name,
		Model:      model,
		TokensUsed: tokens,
		Cost:       p.costFor(model, tokens),
		Metadata: map[string]any{
			"finish_reason":     apiResp.Choices[0].FinishReason,
			"prompt_tokens":     apiResp.Usage.PromptTokens,
			"completion_tokens": apiResp.Usage.CompletionTokens,
		},
	}, nil
}

func (p *OpenAIProvider) costFor(model string, tokens int) float64 {
	price, ok := p.pricing[model]
	if !ok {
		price = p.pricing[p.defaultModel]
	}
	return float64(tokens) / 1000 * price
}

type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type openAIChoice struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}
