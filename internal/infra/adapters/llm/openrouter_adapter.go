// File: internal/infra/adapters/llm/openrouter_adapter.go
package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ghostwriter/internal/domain/ports/adapter"
)

var _ adapter.ProviderAdapter = (*OpenRouterAdapter)(nil)

// OpenRouterAdapter calls OpenRouter's OpenAI-compatible /chat/completions.
// Authorization: Bearer <key>; HTTP-Referer identifies the calling app.
type OpenRouterAdapter struct {
	name        string
	apiKey      string
	base        string
	referer     string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

func NewOpenRouterAdapter(name, apiKey, base, model, referer string, maxTokens int, temperature float64) (*OpenRouterAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openrouter: empty api key")
	}
	if base == "" {
		base = "https://openrouter.ai/api/v1"
	}
	if model == "" {
		model = "meta-llama/llama-3.3-70b-instruct:free"
	}
	if referer == "" {
		referer = "https://ghostwriter.app"
	}
	return &OpenRouterAdapter{
		name:        name,
		apiKey:      apiKey,
		base:        strings.TrimRight(base, "/"),
		referer:     referer,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		client:      newHTTPClient(),
	}, nil
}

func (o *OpenRouterAdapter) Name() string { return o.name }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (o *OpenRouterAdapter) Invoke(ctx context.Context, prompt string) (adapter.Completion, error) {
	req := chatRequest{
		Model:       o.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + o.apiKey,
		"HTTP-Referer":  o.referer,
	}
	var out chatResponse
	if err := postJSON(ctx, o.client, o.name, o.base+"/chat/completions", headers, req, &out); err != nil {
		return adapter.Completion{}, err
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return adapter.Completion{}, shapeErr(o.name, errors.New("no choices in response"))
	}
	total := 0
	if out.Usage != nil {
		total = out.Usage.TotalTokens
	}
	tokens, reported := usageOrEstimate(total)
	return adapter.Completion{Text: out.Choices[0].Message.Content, TokensUsed: tokens, UsageReported: reported}, nil
}
