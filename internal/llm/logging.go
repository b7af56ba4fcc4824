package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/logger"
)

const previewRunes = 200

type loggingProvider struct {
	Provider
	log *zap.Logger
}

// WithLogging logs prompt and reply previews of p at debug level
func WithLogging(p Provider, log *zap.Logger) Provider {
	if log == nil {
		return p
	}
	return &loggingProvider{Provider: p, log: logger.WithProvider(log, p.Name(), p.Model())}
}

func (l *loggingProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	start := time.Now()
	l.log.Debug("completion request", zap.String("prompt", logger.TruncateForLog(req.Prompt, previewRunes)))

	text, err := l.Provider.Complete(ctx, req)
	if err != nil {
		l.log.Warn("completion failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return "", err
	}

	l.log.Debug("completion reply",
		zap.Duration("elapsed", time.Since(start)),
		zap.String("reply", logger.TruncateForLog(text, previewRunes)),
	)
	return text, nil
}
