// File: internal/infra/adapters/llm/qwen_adapter.go
package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ghostwriter/internal/domain/ports/adapter"
)

var _ adapter.ProviderAdapter = (*QwenAdapter)(nil)

const dashScopeURL = "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation"

// QwenAdapter calls Alibaba DashScope's native text-generation API.
// Request: {model, input:{messages}, parameters}; response text in output.text.
type QwenAdapter struct {
	name        string
	apiKey      string
	url         string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

func NewQwenAdapter(name, apiKey, url, model string, maxTokens int, temperature float64) (*QwenAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("qwen: empty api key")
	}
	if url == "" {
		url = dashScopeURL
	}
	if model == "" {
		model = "qwen-turbo"
	}
	return &QwenAdapter{
		name:        name,
		apiKey:      apiKey,
		url:         url,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		client:      newHTTPClient(),
	}, nil
}

func (q *QwenAdapter) Name() string { return q.name }

type qwenRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []chatMessage `json:"messages"`
	} `json:"input"`
	Parameters struct {
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
	} `json:"parameters"`
}

type qwenResponse struct {
	Output struct {
		Text string `json:"text"`
	} `json:"output"`
	Usage *struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (q *QwenAdapter) Invoke(ctx context.Context, prompt string) (adapter.Completion, error) {
	var req qwenRequest
	req.Model = q.model
	req.Input.Messages = []chatMessage{{Role: "user", Content: prompt}}
	req.Parameters.Temperature = q.temperature
	req.Parameters.MaxTokens = q.maxTokens

	var out qwenResponse
	headers := map[string]string{"Authorization": "Bearer " + q.apiKey}
	if err := postJSON(ctx, q.client, q.name, q.url, headers, req, &out); err != nil {
		return adapter.Completion{}, err
	}
	if strings.TrimSpace(out.Output.Text) == "" {
		return adapter.Completion{}, shapeErr(q.name, errors.New("missing output.text"))
	}
	total := 0
	if out.Usage != nil {
		total = out.Usage.TotalTokens
	}
	tokens, reported := usageOrEstimate(total)
	return adapter.Completion{Text: out.Output.Text, TokensUsed: tokens, UsageReported: reported}, nil
}
