// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	CORSOrigins    []string      `yaml:"cors_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	TrustedProxies []string      `yaml:"trusted_proxies"` // CIDRs or IPs whose X-Forwarded-For is believed
}

// ParseTrustedProxies turns CIDRs and bare IPs into networks.
func ParseTrustedProxies(list []string) ([]*net.IPNet, error) {
	out := make([]*net.IPNet, 0, len(list))
	for _, raw := range list {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			ip := net.ParseIP(raw)
			if ip == nil {
				return nil, fmt.Errorf("server.trusted_proxies: invalid address %q", raw)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(raw)
		if err != nil {
			return nil, fmt.Errorf("server.trusted_proxies: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	Driver     string `yaml:"driver"` // postgres|sqlite
	URL        string `yaml:"url"`
	SQLitePath string `yaml:"sqlite_path"`
	MaxConns   int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	JWTTTL    time.Duration `yaml:"jwt_ttl"`
}

type AdminConfig struct {
	APIKey string `yaml:"api_key"`
}

type RateLimitConfig struct {
	Window      time.Duration `yaml:"window"`
	MaxRequests int           `yaml:"max_requests"`
}

type CacheConfig struct {
	Backend       string        `yaml:"backend"` // memory|redis
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// ProviderConfig describes one entry of the ordered fallback chain.
type ProviderConfig struct {
	Name        string   `yaml:"name"`
	Kind        string   `yaml:"kind"` // gemini|groq|openrouter|qwen|noop
	APIKey      string   `yaml:"api_key"`
	Model       string   `yaml:"model"`
	BaseURL     string   `yaml:"base_url"`
	Referer     string   `yaml:"referer"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature"`
	Enabled     *bool    `yaml:"enabled"`
}

// DefaultTemperature applies when a provider entry leaves temperature unset.
const DefaultTemperature = 0.7

// IsEnabled treats a missing enabled flag as true.
func (p ProviderConfig) IsEnabled() bool { return p.Enabled == nil || *p.Enabled }

// SamplingTemperature returns the configured temperature; an explicit 0 is kept.
func (p ProviderConfig) SamplingTemperature() float64 {
	if p.Temperature == nil {
		return DefaultTemperature
	}
	return *p.Temperature
}

type LLMConfig struct {
	AttemptTimeout    time.Duration    `yaml:"attempt_timeout"`
	GenerationTimeout time.Duration    `yaml:"generation_timeout"`
	MaxConcurrent     int              `yaml:"max_concurrent"` // per provider
	Providers         []ProviderConfig `yaml:"providers"`
}

type WorkersConfig struct {
	Usage int `yaml:"usage"`
}

type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Admin     AdminConfig     `yaml:"admin"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache"`
	LLM       LLMConfig       `yaml:"llm"`
	Workers   WorkersConfig   `yaml:"workers"`
	Security  SecurityConfig  `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

// DefaultProviders is the fallback chain used when the config lists none:
// free tiers first, paid last.
func DefaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{Name: "gemini", Kind: "gemini", APIKey: os.Getenv("GEMINI_API_KEY"), Model: "gemini-2.5-flash"},
		{Name: "groq", Kind: "groq", APIKey: os.Getenv("GROQ_API_KEY"), Model: "mixtral-8x7b-32768"},
		{Name: "openrouter", Kind: "openrouter", APIKey: os.Getenv("OPENROUTER_API_KEY"), Model: "meta-llama/llama-3.3-70b-instruct:free"},
		{Name: "qwen", Kind: "qwen", APIKey: os.Getenv("QWEN_API_KEY"), Model: "qwen-turbo"},
	}
}

// LoadConfig reads path, expands ${ENV} references and applies defaults.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

// Parse is LoadConfig without the file read.
func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(b))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 90 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "ghostwriter.db"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Auth.JWTTTL <= 0 {
		cfg.Auth.JWTTTL = 7 * 24 * time.Hour
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = 15 * time.Minute
	}
	if cfg.RateLimit.MaxRequests <= 0 {
		cfg.RateLimit.MaxRequests = 100
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	cfg.Cache.Backend = strings.ToLower(cfg.Cache.Backend)
	cfg.Cache.TTL = normalizeTTL(cfg.Cache.TTL, 24*time.Hour)
	cfg.Cache.SweepInterval = normalizeTTL(cfg.Cache.SweepInterval, time.Hour)
	if cfg.LLM.AttemptTimeout <= 0 {
		cfg.LLM.AttemptTimeout = 20 * time.Second
	}
	if cfg.LLM.GenerationTimeout <= 0 {
		cfg.LLM.GenerationTimeout = 60 * time.Second
	}
	if cfg.LLM.MaxConcurrent <= 0 {
		cfg.LLM.MaxConcurrent = 16
	}
	if len(cfg.LLM.Providers) == 0 {
		cfg.LLM.Providers = DefaultProviders()
	}
	for i := range cfg.LLM.Providers {
		p := &cfg.LLM.Providers[i]
		p.Kind = strings.ToLower(strings.TrimSpace(p.Kind))
		if p.Kind == "" {
			p.Kind = strings.ToLower(p.Name)
		}
		if p.Name == "" {
			p.Name = p.Kind
		}
		if p.MaxTokens <= 0 {
			p.MaxTokens = 300
		}
		if p.Temperature == nil {
			t := DefaultTemperature
			p.Temperature = &t
		}
	}
	if cfg.Workers.Usage <= 0 {
		cfg.Workers.Usage = 4
	}
}

func (cfg *Config) validate() error {
	if _, err := ParseTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return err
	}
	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.URL == "" {
			return errors.New("database.url is required for the postgres driver")
		}
	case "sqlite":
	default:
		return fmt.Errorf("database.driver %q not supported", cfg.Database.Driver)
	}
	switch cfg.Cache.Backend {
	case "memory":
	case "redis":
		if cfg.Redis.URL == "" {
			return errors.New("redis.url is required for cache.backend=redis")
		}
	default:
		return fmt.Errorf("cache.backend %q not supported", cfg.Cache.Backend)
	}
	if cfg.Auth.JWTSecret == "" {
		if !cfg.Runtime.Dev {
			return errors.New("auth.jwt_secret is required")
		}
		cfg.Auth.JWTSecret = "dev-secret-change-me"
	}
	seen := map[string]bool{}
	for _, p := range cfg.LLM.Providers {
		if seen[p.Name] {
			return fmt.Errorf("llm.providers: duplicate name %q", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

func normalizeTTL(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
