// Package llm wraps text-completion services behind a single Completer interface.
package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/config"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/util"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/worker"
)

// ErrEmptyResponse is returned when a service answers without any text
var ErrEmptyResponse = errors.New("empty completion response")

// Completer turns a prompt into model text
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Provider is a named Completer backed by a concrete service
type Provider interface {
	Completer

	// Name returns the provider name
	Name() string

	// Model returns the model used when the request does not name one
	Model() string
}

// CompletionRequest is a single-turn completion
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int // 0 uses the provider default
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai" (any OpenAI-compatible API such as DeepSeek), "anthropic", "gemini"
	Provider string

	// Model name (provider-specific)
	Model string

	APIKey string

	// BaseURL overrides the service endpoint
	BaseURL string

	// Timeout bounds one request
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	// HTTPClient carries proxy and rate-limit settings; nil uses a plain client
	HTTPClient *http.Client
}

// DefaultConfig returns the DeepSeek defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Model:     "deepseek-chat",
		BaseURL:   "https://api.deepseek.com",
		Timeout:   60 * time.Second,
		MaxTokens: 2000,
	}
}

// ConfigFromSettings converts loaded settings into a provider Config with an
// HTTP client honoring the proxy and per-host rate limit.
func ConfigFromSettings(c config.LLMConfig, h config.HTTPConfig) Config {
	client := util.NewHTTPClient(c.Timeout, h.HTTPProxy, h.HTTPSProxy, h.NoProxy)
	client.Transport = worker.NewLimiter(c.RequestsPerSecond, 1).Transport(client.Transport)

	return Config{
		Provider:   c.Provider,
		Model:      c.Model,
		APIKey:     c.APIKey,
		BaseURL:    c.BaseURL,
		Timeout:    c.Timeout,
		MaxTokens:  c.MaxTokens,
		HTTPClient: client,
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 60 * time.Second
	}
	return c.Timeout
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: c.timeout()}
}

func (c Config) maxTokens(req CompletionRequest) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 2000
}
