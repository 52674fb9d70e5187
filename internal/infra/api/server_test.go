package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"ghostwriter/internal/config"
	"ghostwriter/internal/domain/ports/adapter"
	"ghostwriter/internal/infra/adapters/llm"
	"ghostwriter/internal/infra/api"
	"ghostwriter/internal/infra/cache"
	"ghostwriter/internal/infra/db/sqlite"
	"ghostwriter/internal/infra/security"
	"ghostwriter/internal/infra/worker"
	"ghostwriter/internal/usecase"
)

//
// -------------------- test helpers --------------------
//

func newLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

// inline runs background tasks synchronously.
type inline struct{}

func (inline) Submit(task worker.Task) error { return task(context.Background()) }

type stubLimiter struct {
	allow bool
	err   error
	calls int
	keys  []string
}

func (s *stubLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	s.calls++
	s.keys = append(s.keys, key)
	return s.allow, s.err
}

type failing struct{}

func (failing) Name() string { return "broken" }

func (failing) Invoke(context.Context, string) (adapter.Completion, error) {
	return adapter.Completion{}, errors.New("down")
}

type harness struct {
	handler http.Handler
	cfg     *config.Config
}

type opts struct {
	providers []adapter.ProviderAdapter
	limiter   api.Limiter
	yaml      string // appended to the base config
}

func newHarness(t *testing.T, o opts) *harness {
	t.Helper()
	logger := newLogger()
	cfg, err := config.Parse([]byte("database:\n  driver: sqlite\nadmin:\n  api_key: admin-secret\n"+o.yaml), true)
	if err != nil {
		t.Fatal(err)
	}

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	providers := o.providers
	if providers == nil {
		providers = []adapter.ProviderAdapter{llm.NewNoopAdapter("noop")}
	}
	orch := usecase.NewFallbackOrchestrator(providers, usecase.OrchestratorOptions{}, logger)
	mem := cache.NewMemoryCache(time.Hour, logger)
	recorder := usecase.NewUsageRecorder(store.Usage())

	tokens, err := security.NewTokenService(cfg.Auth.JWTSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	cipher, err := security.NewMessageCipher("test-key")
	if err != nil {
		t.Fatal(err)
	}

	srv := api.NewServer(api.Deps{
		Auth:        usecase.NewAuthUseCase(store.Users(), bcrypt.MinCost, logger),
		Suggestions: usecase.NewSuggestionUseCase(mem, orch, recorder, inline{}, time.Hour, logger, true),
		Messages:    usecase.NewMessageUseCase(store.Messages(), store.Users(), store, cipher, logger),
		Analytics:   usecase.NewAnalyticsUseCase(store.Usage()),
		Tokens:      tokens,
		Limiter:     o.limiter,
		Providers:   orch.Providers(),
	}, cfg, logger)
	return &harness{handler: srv.Router(), cfg: cfg}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message    string `json:"message"`
		Code       string `json:"code"`
		StatusCode int    `json:"statusCode"`
	} `json:"error"`
}

func (h *harness) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	var env envelope
	if path != "/metrics" {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func (h *harness) register(t *testing.T, email string) string {
	t.Helper()
	rec, env := h.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": email, "password": "secret1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil || out.Token == "" {
		t.Fatalf("token missing: %s", env.Data)
	}
	return out.Token
}

//
// -------------------- tests --------------------
//

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t, opts{})
	rec, _ := h.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("health: %d headers=%v", rec.Code, rec.Header())
	}
	rec, _ = h.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
}

func TestNotFoundEnvelope(t *testing.T) {
	h := newHarness(t, opts{})
	rec, env := h.do(t, http.MethodGet, "/nope", "", nil)
	if rec.Code != http.StatusNotFound || env.Success || env.Error == nil || env.Error.StatusCode != 404 {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestAuthFlow(t *testing.T) {
	h := newHarness(t, opts{})
	token := h.register(t, "ana@example.com")

	t.Run("duplicate is 409", func(t *testing.T) {
		rec, _ := h.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "ana@example.com", "password": "secret1"})
		if rec.Code != http.StatusConflict {
			t.Fatalf("got %d", rec.Code)
		}
	})
	t.Run("weak password is 400", func(t *testing.T) {
		rec, env := h.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "b@example.com", "password": "123"})
		if rec.Code != http.StatusBadRequest || env.Error.Code != "WEAK_PASSWORD" {
			t.Fatalf("got %d %s", rec.Code, rec.Body.String())
		}
	})
	t.Run("bad login is 401", func(t *testing.T) {
		rec, _ := h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ana@example.com", "password": "nope123"})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("got %d", rec.Code)
		}
	})
	t.Run("login and me", func(t *testing.T) {
		rec, _ := h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ana@example.com", "password": "secret1"})
		if rec.Code != http.StatusOK {
			t.Fatalf("login: %d", rec.Code)
		}
		rec, env := h.do(t, http.MethodGet, "/api/auth/me", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("me: %d %s", rec.Code, rec.Body.String())
		}
		var me map[string]any
		_ = json.Unmarshal(env.Data, &me)
		if me["email"] != "ana@example.com" {
			t.Fatalf("me = %v", me)
		}
		if _, leaked := me["passwordHash"]; leaked {
			t.Fatal("password hash serialized")
		}
	})
	t.Run("missing and bad tokens are 401", func(t *testing.T) {
		if rec, _ := h.do(t, http.MethodGet, "/api/auth/me", "", nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("missing: %d", rec.Code)
		}
		if rec, _ := h.do(t, http.MethodGet, "/api/auth/me", "garbage", nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("garbage: %d", rec.Code)
		}
	})
	t.Run("logout acknowledges", func(t *testing.T) {
		if rec, _ := h.do(t, http.MethodPost, "/api/auth/logout", token, nil); rec.Code != http.StatusOK {
			t.Fatalf("got %d", rec.Code)
		}
	})
}

func TestGenerateReplyThenCached(t *testing.T) {
	h := newHarness(t, opts{})
	token := h.register(t, "ana@example.com")
	body := map[string]any{"message": "Can we reschedule?", "tone": "professional"}

	type result struct {
		Suggestions []string `json:"suggestions"`
		Provider    string   `json:"provider"`
		Cached      bool     `json:"cached"`
	}
	rec, env := h.do(t, http.MethodPost, "/api/messages/generate-reply", token, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("first: %d %s", rec.Code, rec.Body.String())
	}
	var first result
	_ = json.Unmarshal(env.Data, &first)
	if len(first.Suggestions) != 3 || first.Provider != "noop" || first.Cached {
		t.Fatalf("first = %+v", first)
	}

	_, env = h.do(t, http.MethodPost, "/api/messages/generate-reply", token, body)
	var second result
	_ = json.Unmarshal(env.Data, &second)
	if !second.Cached || second.Suggestions[0] != first.Suggestions[0] {
		t.Fatalf("second = %+v", second)
	}

	rec, env = h.do(t, http.MethodGet, "/api/analytics?days=7", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("analytics: %d", rec.Code)
	}
	var stats struct {
		TotalRequests int `json:"totalRequests"`
	}
	_ = json.Unmarshal(env.Data, &stats)
	if stats.TotalRequests != 2 {
		t.Fatalf("usage not recorded: %s", env.Data)
	}

	if rec, _ := h.do(t, http.MethodPost, "/api/messages/generate-reply", token, map[string]any{"message": ""}); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty message: %d", rec.Code)
	}
}

func TestGenerateReplyDegraded(t *testing.T) {
	h := newHarness(t, opts{providers: []adapter.ProviderAdapter{failing{}}})
	token := h.register(t, "ana@example.com")
	rec, env := h.do(t, http.MethodPost, "/api/messages/generate-reply", token, map[string]any{"message": "hi", "tone": "casual"})
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}
	var res struct {
		Provider string `json:"provider"`
		Degraded bool   `json:"degraded"`
	}
	_ = json.Unmarshal(env.Data, &res)
	if res.Provider != "fallback" || !res.Degraded {
		t.Fatalf("res = %+v", res)
	}
}

func TestMessagesCRUD(t *testing.T) {
	h := newHarness(t, opts{})
	token := h.register(t, "ana@example.com")
	other := h.register(t, "bob@example.com")

	save := map[string]any{
		"originalMessage":    "Lunch tomorrow?",
		"tone":               "casual",
		"suggestions":        []string{"Sure!", "Can't, sorry", "Maybe"},
		"selectedSuggestion": "Sure!",
		"tokensUsed":         120,
	}
	rec, env := h.do(t, http.MethodPost, "/api/messages", token, save)
	if rec.Code != http.StatusCreated {
		t.Fatalf("save: %d %s", rec.Code, rec.Body.String())
	}
	var saved struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(env.Data, &saved)

	_, env = h.do(t, http.MethodGet, "/api/messages?limit=10", token, nil)
	var page struct {
		Messages []struct {
			OriginalMessage string `json:"originalMessage"`
		} `json:"messages"`
	}
	_ = json.Unmarshal(env.Data, &page)
	if len(page.Messages) != 1 || page.Messages[0].OriginalMessage != "Lunch tomorrow?" {
		t.Fatalf("list = %s", env.Data)
	}

	_, env = h.do(t, http.MethodGet, "/api/messages/search?query=lunch", token, nil)
	var found []map[string]any
	_ = json.Unmarshal(env.Data, &found)
	if len(found) != 1 {
		t.Fatalf("search = %s", env.Data)
	}

	if rec, _ := h.do(t, http.MethodGet, "/api/messages?limit=abc", token, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: %d", rec.Code)
	}
	if rec, _ := h.do(t, http.MethodDelete, "/api/messages/"+saved.ID, other, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign delete: %d", rec.Code)
	}
	if rec, _ := h.do(t, http.MethodDelete, "/api/messages/"+saved.ID, token, nil); rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}

	rec, env = h.do(t, http.MethodGet, "/api/auth/me", token, nil)
	var me struct {
		TotalMessages int `json:"totalMessages"`
	}
	_ = json.Unmarshal(env.Data, &me)
	if rec.Code != http.StatusOK || me.TotalMessages != 1 {
		t.Fatalf("totals = %s", env.Data)
	}
}

func TestAnalyticsValidation(t *testing.T) {
	h := newHarness(t, opts{})
	token := h.register(t, "ana@example.com")
	for _, path := range []string{"/api/analytics?days=0", "/api/analytics?days=91", "/api/analytics/tone-breakdown?days=x"} {
		if path == "/api/analytics?days=0" {
			// zero means "default window"
			if rec, _ := h.do(t, http.MethodGet, path, token, nil); rec.Code != http.StatusOK {
				t.Fatalf("%s: %d", path, rec.Code)
			}
			continue
		}
		if rec, _ := h.do(t, http.MethodGet, path, token, nil); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: %d", path, rec.Code)
		}
	}
	for _, path := range []string{"/api/analytics/cost", "/api/analytics/daily", "/api/analytics/tone-breakdown"} {
		if rec, _ := h.do(t, http.MethodGet, path, token, nil); rec.Code != http.StatusOK {
			t.Fatalf("%s: %d", path, rec.Code)
		}
	}
}

func TestAdminCache(t *testing.T) {
	h := newHarness(t, opts{})
	if rec, _ := h.do(t, http.MethodGet, "/api/admin/cache/stats", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no key: %d", rec.Code)
	}
	req := httptest.NewRequest(http.MethodDelete, "/api/admin/cache", nil)
	req.Header.Set("X-Admin-Key", "admin-secret")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRateLimit(t *testing.T) {
	lim := &stubLimiter{allow: false}
	h := newHarness(t, opts{limiter: lim})
	rec, env := h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@b.co", "password": "secret1"})
	if rec.Code != http.StatusTooManyRequests || env.Error.Code != "RATE_LIMITED" {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	if rec, _ := h.do(t, http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK {
		t.Fatal("health should not be rate limited")
	}

	lim.allow, lim.err = false, errors.New("redis down")
	if rec, _ := h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@b.co", "password": "secret1"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("limiter outage should fail open, got %d", rec.Code)
	}
}

func (h *harness) loginFrom(t *testing.T, remoteAddr, forwardedFor string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"email":"a@b.co","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	lim := &stubLimiter{allow: true}
	h := newHarness(t, opts{limiter: lim})
	for i := 0; i < 20; i++ {
		h.loginFrom(t, "203.0.113.7:5555", fmt.Sprintf("198.51.100.%d", i))
	}
	h.loginFrom(t, "203.0.113.7:6666", "")
	for _, k := range lim.keys {
		if k != "rate_limit:api:203.0.113.7" {
			t.Fatalf("key = %q, want the socket address", k)
		}
	}
	if len(lim.keys) != 21 {
		t.Fatalf("limiter saw %d requests", len(lim.keys))
	}
}

func TestRateLimitTrustsConfiguredProxy(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{name: "rightmost untrusted hop", remote: "10.1.2.3:4000", xff: "6.6.6.6, 198.51.100.9, 10.0.0.5", want: "198.51.100.9"},
		{name: "no header", remote: "10.1.2.3:4000", want: "10.1.2.3"},
		{name: "garbage hop", remote: "10.1.2.3:4000", xff: "198.51.100.9, not-an-ip", want: "10.1.2.3"},
		{name: "untrusted peer", remote: "192.0.2.1:4000", xff: "198.51.100.9", want: "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lim := &stubLimiter{allow: true}
			h := newHarness(t, opts{limiter: lim, yaml: "server:\n  trusted_proxies: [\"10.0.0.0/8\"]\n"})
			h.loginFrom(t, tt.remote, tt.xff)
			if len(lim.keys) != 1 || lim.keys[0] != "rate_limit:api:"+tt.want {
				t.Fatalf("keys = %v, want client %s", lim.keys, tt.want)
			}
		})
	}
}

func preflight(h *harness, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/messages", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t, opts{})
	rec := preflight(h, "http://localhost:8081")
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight: %d %v", rec.Code, rec.Header())
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Fatalf("wildcard origin must not allow credentials, got %q", got)
	}
}

func TestCORSListedOrigins(t *testing.T) {
	h := newHarness(t, opts{yaml: "server:\n  cors_origins: [\"https://app.example\"]\n"})

	rec := preflight(h, "https://app.example")
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://app.example" ||
		rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("listed origin: %v", rec.Header())
	}

	rec = preflight(h, "https://evil.example")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unlisted origin allowed: %q", got)
	}
}
