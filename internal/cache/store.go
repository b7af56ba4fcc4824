package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/config"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/logger"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/model"
)

// TTLs holds the lifetime of each artifact kind
type TTLs struct {
	Result time.Duration
	Search time.Duration
	Score  time.Duration
}

// DefaultTTLs returns 7 days for results and 3 days for evidence and scores
func DefaultTTLs() TTLs {
	return TTLs{
		Result: 7 * 24 * time.Hour,
		Search: 3 * 24 * time.Hour,
		Score:  3 * 24 * time.Hour,
	}
}

// TTLsFromConfig reads artifact lifetimes from the cache config, keeping defaults for unset values
func TTLsFromConfig(cfg config.CacheConfig) TTLs {
	t := DefaultTTLs()
	if cfg.ResultTTL > 0 {
		t.Result = cfg.ResultTTL
	}
	if cfg.SearchTTL > 0 {
		t.Search = cfg.SearchTTL
	}
	if cfg.ScoreTTL > 0 {
		t.Score = cfg.ScoreTTL
	}
	return t
}

// Store gives typed access to cached artifacts. Backend failures are
// logged and reported as misses; writes never return errors.
type Store struct {
	cache  Cache
	ttl    TTLs
	logger *zap.Logger
}

// NewStore wraps c
func NewStore(c Cache, ttl TTLs, log *zap.Logger) *Store {
	return &Store{cache: c, ttl: ttl, logger: logger.OrNop(log)}
}

// Result returns the serialized VerificationResult for a document hash
func (s *Store) Result(ctx context.Context, docHash string) ([]byte, bool) {
	return s.get(ctx, Key(KindResult, docHash))
}

// SetResult stores the serialized VerificationResult for a document hash
func (s *Store) SetResult(ctx context.Context, docHash string, data []byte) {
	s.set(ctx, Key(KindResult, docHash), data, s.ttl.Result)
}

// Evidence returns the cached evidence list. An empty list counts as a miss.
func (s *Store) Evidence(ctx context.Context, hash string) ([]model.Evidence, bool) {
	data, ok := s.get(ctx, Key(KindSearch, hash))
	if !ok {
		return nil, false
	}
	var evidence []model.Evidence
	if err := json.Unmarshal(data, &evidence); err != nil {
		s.logger.Warn("discarding corrupt evidence entry", zap.String("hash", hash), zap.Error(err))
		return nil, false
	}
	if len(evidence) == 0 {
		return nil, false
	}
	return evidence, true
}

// SetEvidence stores an evidence list
func (s *Store) SetEvidence(ctx context.Context, hash string, evidence []model.Evidence) {
	s.setJSON(ctx, Key(KindSearch, hash), evidence, s.ttl.Search)
}

// ClaimResult returns a cached scored claim
func (s *Store) ClaimResult(ctx context.Context, hash string) (model.ClaimResult, bool) {
	data, ok := s.get(ctx, Key(KindScore, hash))
	if !ok {
		return model.ClaimResult{}, false
	}
	var r model.ClaimResult
	if err := json.Unmarshal(data, &r); err != nil {
		s.logger.Warn("discarding corrupt score entry", zap.String("hash", hash), zap.Error(err))
		return model.ClaimResult{}, false
	}
	return r, true
}

// SetClaimResult stores a scored claim
func (s *Store) SetClaimResult(ctx context.Context, hash string, r model.ClaimResult) {
	s.setJSON(ctx, Key(KindScore, hash), r, s.ttl.Score)
}

// Clear removes every cached artifact
func (s *Store) Clear(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

func (s *Store) get(ctx context.Context, key string) ([]byte, bool) {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return data, ok
}

func (s *Store) set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, data, ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Store) setJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.set(ctx, key, data, ttl)
}
