// File: internal/infra/adapters/llm/provider.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ghostwriter/internal/domain"
)

// EstimatedTokens is reported when a provider omits usage. It matches the
// configured completion budget and is an approximation, not an accounting figure.
const EstimatedTokens = 300

const defaultHTTPTimeout = 30 * time.Second

func newHTTPClient() *http.Client { return &http.Client{Timeout: defaultHTTPTimeout} }

func transportErr(provider string, err error) error {
	return &domain.ProviderError{Provider: provider, Kind: domain.ProviderErrTransport, Err: err}
}

func shapeErr(provider string, err error) error {
	return &domain.ProviderError{Provider: provider, Kind: domain.ProviderErrShape, Err: err}
}

func statusErr(provider string, code int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return &domain.ProviderError{
		Provider:   provider,
		Kind:       domain.KindForStatus(code),
		StatusCode: code,
		Err:        fmt.Errorf("%s", msg),
	}
}

// postJSON sends body to url and decodes a 2xx response into out.
func postJSON(ctx context.Context, cli *http.Client, provider, url string, headers map[string]string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return shapeErr(provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return transportErr(provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := cli.Do(req)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return transportErr(provider, cerr)
		}
		return transportErr(provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return transportErr(provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusErr(provider, resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return shapeErr(provider, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// usageOrEstimate picks the reported total when positive.
func usageOrEstimate(total int) (int, bool) {
	if total > 0 {
		return total, true
	}
	return EstimatedTokens, false
}
