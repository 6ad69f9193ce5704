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

// GeminiProvider implements LLMProvider using the Gemini generateContent API.
type GeminiProvider struct {
	apiKey       string
	apiBase      string
	defaultModel string
	tierModels   map[string]string
	pricing      map[string]float64 // USD per 1K tokens
	httpClient   *http.Client
}

// NewGeminiProvider creates the Gemini backend client.
func NewGeminiProvider(apiKey, apiBase string) *GeminiProvider {
	if apiBase == "" {
		apiBase = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &GeminiProvider{
		apiKey:       apiKey,
		apiBase:      strings.TrimSuffix(apiBase, "/"),
		defaultModel: "gemini-2.0-flash",
		tierModels: map[string]string{
			PriorityFast:     "gemini-2.0-flash-lite",
			PriorityBalanced: "gemini-2.0-flash",
			PriorityQuality:  "gemini-2.5-pro",
		},
		pricing: map[string]float64{
			"gemini-2.0-flash-lite": 0.0003,
			"gemini-2.0-flash":      0.0006,
			"gemini-2.5-pro":        0.008,
		},
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Name returns the canonical provider name.
func (p *GeminiProvider) Name() string { return "gemini" }

// DefaultModel returns the configured default model.
func (p *GeminiProvider) DefaultModel() string { return p.defaultModel }

// ModelForTier returns the concrete model for a cost priority tier.
func (p *GeminiProvider) ModelForTier(tier string) string {
	if m, ok := p.tierModels[tier]; ok {
		return m
	}
	return p.defaultModel
}

// EstimateTokens returns a cheap token estimate for text.
func (p *GeminiProvider) EstimateTokens(text string) int {
	return EstimateTokens(text)
}

// GenerateText sends a generateContent request to the Gemini API.
func (p *GeminiProvider) GenerateText(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	if p.apiKey == "" {
		return nil, &ProviderError{Provider: "gemini", Hint: "set providers.gemini.apiKey in config"}
	}
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": req.Prompt}}},
		},
		"generationConfig": map[string]any{
			"maxOutputTokens": req.MaxTokens,
			"temperature":     req.Temperature,
		},
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.apiBase, model, p.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

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

	var apiResp geminiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	var sb strings.Builder
	for _, part := range apiResp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	text := sb.String()

	tokens := apiResp.UsageMetadata.TotalTokenCount
	if tokens == 0 {
		tokens = p.EstimateTokens(req.Prompt) + p.EstimateTokens(text)
	}
	price, ok := p.pricing[model]
	if !ok {
		price = p.pricing[p.defaultModel]
	}
	return &GenerateResult{
		Text:       text,
		Provider:   "gemini",
		Model:      model,
		TokensUsed: tokens,
		Cost:       float64(tokens) / 1000 * price,
		Metadata: map[string]any{
			"finish_reason": apiResp.Candidates[0].FinishReason,
		},
	}, nil
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}
