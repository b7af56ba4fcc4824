package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/config"
)

// New builds the backend selected by cfg. Durable backends are fronted by memory.
func New(ctx context.Context, cfg config.CacheConfig) (Cache, error) {
	memory := NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)

	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return memory, nil
	case "sqlite":
		durable, err := NewSQLiteCache(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return NewLayeredCache(memory, durable, cfg.MemoryTTL), nil
	case "redis":
		durable, err := NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewLayeredCache(memory, durable, cfg.MemoryTTL), nil
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownBackend, cfg.Backend)
	}
}
