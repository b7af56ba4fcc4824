// Package config holds the typed verifier configuration and its defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete verifier configuration
type Config struct {
	LLM       LLMConfig       `mapstructure:"llm" yaml:"llm"`
	Search    SearchConfig    `mapstructure:"search" yaml:"search"`
	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline" yaml:"pipeline"`
	HTTP      HTTPConfig      `mapstructure:"http" yaml:"http"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Authority AuthorityConfig `mapstructure:"authority" yaml:"authority"`
}

// LLMConfig configures the text-completion service
type LLMConfig struct {
	Provider    string        `mapstructure:"provider" yaml:"provider"` // openai, anthropic, gemini
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Temperature float32       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	// RequestsPerSecond throttles calls to the completion host, 0 disables
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// SearchConfig configures the web-search service
type SearchConfig struct {
	APIKey            string        `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL           string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries" yaml:"max_retries"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int           `mapstructure:"burst" yaml:"burst"`
}

// CacheConfig selects the cache backend and artifact lifetimes
type CacheConfig struct {
	Backend    string        `mapstructure:"backend" yaml:"backend"` // memory, sqlite, redis
	SQLitePath string        `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	RedisURL   string        `mapstructure:"redis_url" yaml:"redis_url,omitempty"`
	MemoryTTL  time.Duration `mapstructure:"memory_ttl" yaml:"memory_ttl"`
	ResultTTL  time.Duration `mapstructure:"result_ttl" yaml:"result_ttl"`
	SearchTTL  time.Duration `mapstructure:"search_ttl" yaml:"search_ttl"`
	ScoreTTL   time.Duration `mapstructure:"score_ttl" yaml:"score_ttl"`
}

// PipelineConfig tunes the verification run
type PipelineConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"` // Concurrent per-claim tasks
}

// HTTPConfig holds outbound HTTP settings shared by the service clients
type HTTPConfig struct {
	HTTPProxy  string `mapstructure:"http_proxy" yaml:"http_proxy,omitempty"`
	HTTPSProxy string `mapstructure:"https_proxy" yaml:"https_proxy,omitempty"`
	NoProxy    string `mapstructure:"no_proxy" yaml:"no_proxy,omitempty"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr           string        `mapstructure:"addr" yaml:"addr"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
	PingInterval   time.Duration `mapstructure:"ping_interval" yaml:"ping_interval"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	JSON  bool `mapstructure:"json" yaml:"json"`
	Debug bool `mapstructure:"debug" yaml:"debug"`
}

// AuthorityConfig lists platforms whose pages count as identity evidence
type AuthorityConfig struct {
	TrustedDomains []string `mapstructure:"trusted_domains" yaml:"trusted_domains"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "deepseek-chat",
			BaseURL:     "https://api.deepseek.com",
			Timeout:     60 * time.Second,
			Temperature: 0.1,
			MaxTokens:   2000,
		},
		Search: SearchConfig{
			BaseURL:    "https://api.tavily.com",
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			Burst:      5,
		},
		Cache: CacheConfig{
			Backend:    "memory",
			SQLitePath: "verifier-cache.db",
			MemoryTTL:  time.Hour,
			ResultTTL:  7 * 24 * time.Hour,
			SearchTTL:  3 * 24 * time.Hour,
			ScoreTTL:   3 * 24 * time.Hour,
		},
		Pipeline: PipelineConfig{
			Workers: 8,
		},
		Server: ServerConfig{
			Addr:           ":8000",
			MaxUploadBytes: 10 * 1024 * 1024,
			PingInterval:   10 * time.Second,
		},
		Authority: AuthorityConfig{
			TrustedDomains: []string{"github.com", "linkedin.com", "vercel.app", "medium.com", "twitter.com", "x.com"},
		},
	}
}

// envAliases binds the variable names used by earlier deployments
var envAliases = map[string][]string{
	"llm.api_key":     {"VERIFIER_LLM_API_KEY", "DEEPSEEK_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY"},
	"llm.base_url":    {"VERIFIER_LLM_BASE_URL", "OPENAI_BASE_URL"},
	"search.api_key":  {"VERIFIER_SEARCH_API_KEY", "TAVILY_API_KEY"},
	"cache.redis_url": {"VERIFIER_CACHE_REDIS_URL", "REDIS_URL"},
}

// SetDefaults registers every default on v so env vars and files can override them
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.requests_per_second", d.LLM.RequestsPerSecond)
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.base_url", d.Search.BaseURL)
	v.SetDefault("search.timeout", d.Search.Timeout)
	v.SetDefault("search.max_retries", d.Search.MaxRetries)
	v.SetDefault("search.requests_per_second", d.Search.RequestsPerSecond)
	v.SetDefault("search.burst", d.Search.Burst)
	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.sqlite_path", d.Cache.SQLitePath)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.memory_ttl", d.Cache.MemoryTTL)
	v.SetDefault("cache.result_ttl", d.Cache.ResultTTL)
	v.SetDefault("cache.search_ttl", d.Cache.SearchTTL)
	v.SetDefault("cache.score_ttl", d.Cache.ScoreTTL)
	v.SetDefault("pipeline.workers", d.Pipeline.Workers)
	v.SetDefault("http.http_proxy", "")
	v.SetDefault("http.https_proxy", "")
	v.SetDefault("http.no_proxy", "")
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.max_upload_bytes", d.Server.MaxUploadBytes)
	v.SetDefault("server.ping_interval", d.Server.PingInterval)
	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
	v.SetDefault("authority.trusted_domains", d.Authority.TrustedDomains)
}

// BindEnv wires VERIFIER_* variables and the legacy aliases into v
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix("VERIFIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range envAliases {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}

// Load unmarshals v into a Config and validates it
func Load(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var (
	ErrUnknownBackend  = errors.New("unknown cache backend")
	ErrUnknownProvider = errors.New("unknown llm provider")
	ErrMissingRedisURL = errors.New("cache.redis_url is required for the redis backend")
)

// Validate checks values that would otherwise fail late inside a run
func (c *Config) Validate() error {
	switch strings.ToLower(c.Cache.Backend) {
	case "memory", "sqlite":
	case "redis":
		if c.Cache.RedisURL == "" {
			return ErrMissingRedisURL
		}
	default:
		return fmt.Errorf("%w: %s (supported: memory, sqlite, redis)", ErrUnknownBackend, c.Cache.Backend)
	}

	switch strings.ToLower(c.LLM.Provider) {
	case "openai", "deepseek", "anthropic", "claude", "gemini":
	default:
		return fmt.Errorf("%w: %s (supported: openai, anthropic, gemini)", ErrUnknownProvider, c.LLM.Provider)
	}

	if c.Pipeline.Workers <= 0 {
		c.Pipeline.Workers = 1
	}
	return nil
}

// RequireCredentials reports missing API keys needed for a live run
func (c *Config) RequireCredentials() error {
	var missing []string
	if c.LLM.APIKey == "" {
		missing = append(missing, "llm.api_key (DEEPSEEK_API_KEY)")
	}
	if c.Search.APIKey == "" {
		missing = append(missing, "search.api_key (TAVILY_API_KEY)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Redacted returns a copy with secrets masked for display
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	c.LLM.APIKey = mask(c.LLM.APIKey)
	c.Search.APIKey = mask(c.Search.APIKey)
	if c.Cache.RedisURL != "" {
		c.Cache.RedisURL = mask(c.Cache.RedisURL)
	}
	return c
}
