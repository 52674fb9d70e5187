package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("database:\n  driver: sqlite\n"), true)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("port: got %d", cfg.Server.Port)
	}
	if cfg.Cache.TTL != 24*time.Hour || cfg.Cache.SweepInterval != time.Hour {
		t.Errorf("cache defaults: %+v", cfg.Cache)
	}
	if cfg.Auth.JWTTTL != 7*24*time.Hour {
		t.Errorf("jwt ttl: %v", cfg.Auth.JWTTTL)
	}
	if cfg.Auth.JWTSecret == "" {
		t.Error("dev mode should fill a jwt secret")
	}
	var names []string
	for _, p := range cfg.LLM.Providers {
		names = append(names, p.Name)
		if p.MaxTokens != 300 || p.SamplingTemperature() != DefaultTemperature {
			t.Errorf("%s: provider defaults not applied: %+v", p.Name, p)
		}
	}
	if got := strings.Join(names, ","); got != "gemini,groq,openrouter,qwen" {
		t.Errorf("provider order: %s", got)
	}
}

func TestParseExpandsEnv(t *testing.T) {
	t.Setenv("GW_TEST_SECRET", "s3cret")
	t.Setenv("GW_TEST_KEY", "k-123")
	doc := `
database: {driver: sqlite}
auth:
  jwt_secret: ${GW_TEST_SECRET}
llm:
  attempt_timeout: 5s
  providers:
    - name: primary
      kind: Groq
      api_key: ${GW_TEST_KEY}
    - name: local
      kind: noop
      enabled: false
`
	cfg, err := Parse([]byte(doc), false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Errorf("secret: %q", cfg.Auth.JWTSecret)
	}
	if cfg.LLM.AttemptTimeout != 5*time.Second {
		t.Errorf("attempt timeout: %v", cfg.LLM.AttemptTimeout)
	}
	p := cfg.LLM.Providers
	if len(p) != 2 || p[0].Kind != "groq" || p[0].APIKey != "k-123" {
		t.Fatalf("providers: %+v", p)
	}
	if !p[0].IsEnabled() || p[1].IsEnabled() {
		t.Errorf("enabled flags: %v %v", p[0].IsEnabled(), p[1].IsEnabled())
	}
}

func TestParseValidation(t *testing.T) {
	cases := map[string]string{
		"missing secret":   "database: {driver: sqlite}\n",
		"postgres no url":  "database: {driver: postgres}\nauth: {jwt_secret: x}\n",
		"bad driver":       "database: {driver: mysql}\nauth: {jwt_secret: x}\n",
		"redis cache":      "database: {driver: sqlite}\nauth: {jwt_secret: x}\ncache: {backend: redis}\n",
		"duplicate names":  "database: {driver: sqlite}\nauth: {jwt_secret: x}\nllm:\n  providers: [{name: a, kind: noop}, {name: a, kind: noop}]\n",
		"bad cache driver": "database: {driver: sqlite}\nauth: {jwt_secret: x}\ncache: {backend: disk}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc), false); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: {port: 8081}\ndatabase: {driver: sqlite}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8081 || !cfg.Runtime.Dev {
		t.Fatalf("unexpected cfg: %+v", cfg.Server)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), true); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseKeepsZeroTemperature(t *testing.T) {
	doc := `
database: {driver: sqlite}
llm:
  providers:
    - {name: exact, kind: noop, temperature: 0}
    - {name: warm, kind: noop}
`
	cfg, err := Parse([]byte(doc), true)
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.LLM.Providers[0].SamplingTemperature(); got != 0 {
		t.Errorf("explicit temperature 0 became %v", got)
	}
	if got := cfg.LLM.Providers[1].SamplingTemperature(); got != DefaultTemperature {
		t.Errorf("unset temperature = %v, want %v", got, DefaultTemperature)
	}
}
