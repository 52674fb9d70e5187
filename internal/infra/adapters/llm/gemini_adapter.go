// File: internal/infra/adapters/llm/gemini_adapter.go
package llm

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/domain/ports/adapter"
)

var _ adapter.ProviderAdapter = (*GeminiAdapter)(nil)

type GeminiAdapter struct {
	name        string
	client      *genai.Client
	model       string
	maxOut      int
	temperature float32
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK.
func NewGeminiAdapter(ctx context.Context, name, apiKey, baseURL, model string, maxOut int, temperature float64) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: newHTTPClient(),
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{name: name, client: c, model: model, maxOut: maxOut, temperature: float32(temperature)}, nil
}

func (g *GeminiAdapter) Name() string { return g.name }

func (g *GeminiAdapter) Invoke(ctx context.Context, prompt string) (adapter.Completion, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.maxOut),
		Temperature:     genai.Ptr(g.temperature),
	})
	if err != nil {
		return adapter.Completion{}, g.classify(ctx, err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return adapter.Completion{}, shapeErr(g.name, errors.New("empty candidate text"))
	}
	total := 0
	if resp.UsageMetadata != nil {
		total = int(resp.UsageMetadata.TotalTokenCount)
	}
	tokens, reported := usageOrEstimate(total)
	return adapter.Completion{Text: text, TokensUsed: tokens, UsageReported: reported}, nil
}

func (g *GeminiAdapter) classify(ctx context.Context, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &domain.ProviderError{
			Provider:   g.name,
			Kind:       domain.KindForStatus(apiErr.Code),
			StatusCode: apiErr.Code,
			Err:        err,
		}
	}
	if cerr := ctx.Err(); cerr != nil {
		return transportErr(g.name, cerr)
	}
	return transportErr(g.name, err)
}
