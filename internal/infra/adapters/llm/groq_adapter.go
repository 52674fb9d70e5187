// File: internal/infra/adapters/llm/groq_adapter.go
package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/domain/ports/adapter"
)

var _ adapter.ProviderAdapter = (*GroqAdapter)(nil)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqAdapter talks to Groq through its OpenAI-compatible endpoint.
type GroqAdapter struct {
	name        string
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
}

func NewGroqAdapter(name, apiKey, baseURL, model string, maxTokens int, temperature float64) (*GroqAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("groq: empty api key")
	}
	if baseURL == "" {
		baseURL = groqBaseURL
	}
	if model == "" {
		model = "mixtral-8x7b-32768"
	}
	cli := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"),
		option.WithHTTPClient(newHTTPClient()),
		// the fallback chain is the retry policy
		option.WithMaxRetries(0),
	)
	return &GroqAdapter{name: name, client: cli, model: model, maxTokens: maxTokens, temperature: temperature}, nil
}

func (a *GroqAdapter) Name() string { return a.name }

func (a *GroqAdapter) Invoke(ctx context.Context, prompt string) (adapter.Completion, error) {
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(a.model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Temperature: openai.Float(a.temperature),
		MaxTokens:   openai.Int(int64(a.maxTokens)),
	})
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			return adapter.Completion{}, &domain.ProviderError{
				Provider:   a.name,
				Kind:       domain.KindForStatus(apierr.StatusCode),
				StatusCode: apierr.StatusCode,
				Err:        err,
			}
		}
		if cerr := ctx.Err(); cerr != nil {
			return adapter.Completion{}, transportErr(a.name, cerr)
		}
		return adapter.Completion{}, transportErr(a.name, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return adapter.Completion{}, shapeErr(a.name, errors.New("no choices in response"))
	}
	tokens, reported := usageOrEstimate(int(resp.Usage.TotalTokens))
	return adapter.Completion{Text: resp.Choices[0].Message.Content, TokensUsed: tokens, UsageReported: reported}, nil
}
