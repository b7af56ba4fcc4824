package cli

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/cache"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/config"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/extract"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/llm"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/logger"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/pipeline"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/score"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/search"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/util"
)

// app holds the components shared by the commands
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	cache    cache.Cache
	store    *cache.Store
	verifier *pipeline.Verifier
}

func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// newCacheApp builds the config, logger and cache only
func newCacheApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	c, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("open cache: %w", err)
	}

	return &app{
		cfg:    cfg,
		logger: log,
		cache:  c,
		store:  cache.NewStore(c, cache.TTLsFromConfig(cfg.Cache), log),
	}, nil
}

// newApp builds the full verifier. It fails when API keys are missing.
func newApp(ctx context.Context) (*app, error) {
	a, err := newCacheApp(ctx)
	if err != nil {
		return nil, err
	}
	cfg := a.cfg

	if err := cfg.RequireCredentials(); err != nil {
		a.Close()
		return nil, err
	}

	provider, err := llm.NewProvider(ctx, llm.ConfigFromSettings(cfg.LLM, cfg.HTTP), a.logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create llm provider: %w", err)
	}

	tavily := search.NewTavilyClient(cfg.Search, cfg.HTTP)
	httpClient := util.NewHTTPClient(pipeline.DefaultFetchTimeout, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)

	a.verifier = pipeline.NewVerifier(pipeline.Options{
		Store:    a.store,
		Fetcher:  pipeline.NewFetcher(httpClient, pipeline.DefaultFetchTimeout, pipeline.DefaultUserAgent, cfg.Server.MaxUploadBytes),
		Claims:   extract.NewClaimExtractor(provider, a.logger),
		Searcher: search.NewSearcher(tavily, a.store, cfg.Pipeline.Workers, a.logger),
		Scorer:   score.NewScorer(provider, a.store, cfg.Authority.TrustedDomains, a.logger),
		Workers:  cfg.Pipeline.Workers,
		Logger:   a.logger,
	})

	logger.WithProvider(a.logger, cfg.LLM.Provider, cfg.LLM.Model).Debug("verifier ready",
		zap.String("cache", cfg.Cache.Backend),
		zap.Int("workers", cfg.Pipeline.Workers),
	)
	return a, nil
}

// Close releases the cache and flushes the logger
func (a *app) Close() {
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("close cache", zap.Error(err))
	}
	_ = a.logger.Sync()
}
