package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// NewProvider creates a provider based on configuration, wrapped with debug logging
func NewProvider(ctx context.Context, cfg Config, log *zap.Logger) (Provider, error) {
	var (
		p   Provider
		err error
	)

	switch strings.ToLower(cfg.Provider) {
	case "openai", "deepseek", "":
		p, err = NewOpenAIProvider(cfg)
	case "anthropic", "claude":
		p, err = NewAnthropicProvider(cfg)
	case "gemini":
		p, err = NewGeminiProvider(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, gemini)", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return WithLogging(p, log), nil
}
