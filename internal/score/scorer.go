// Package score assigns each claim a 0-100 credibility score from its evidence.
package score

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/cache"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/llm"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/logger"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/model"
)

const (
	MaxBaseScore = 70
	// ConfirmedThreshold is the lowest base score treated as independent confirmation
	ConfirmedThreshold = 46
	// UnconfirmedCap bounds the final score of claims below ConfirmedThreshold
	UnconfirmedCap = 85

	fallbackBase        = 5
	fallbackExplanation = "Verification stalled."
	unverifiedPrefix    = "UNVERIFIED: "

	promptSnippetRunes = 300
	temperature        = 0.1
)

// Scorer rates claims with a Completer and adjusts the result with evidence signals
type Scorer struct {
	llm      llm.Completer
	store    *cache.Store
	identity *IdentityMatcher
	logger   *zap.Logger
	now      func() time.Time
}

// NewScorer creates a new scorer. A nil store disables caching.
func NewScorer(c llm.Completer, store *cache.Store, trustedDomains []string, log *zap.Logger) *Scorer {
	return &Scorer{
		llm:      c,
		store:    store,
		identity: NewIdentityMatcher(trustedDomains),
		logger:   logger.OrNop(log),
		now:      time.Now,
	}
}

// ScoreKey is the cache hash of a claim scored against an evidence list
func ScoreKey(claim model.Claim, evidence []model.Evidence, id model.Identity) string {
	return cache.Hash(claim.Text, id.FirstName, id.LastName, strings.Join(model.EvidenceURLs(evidence), ""))
}

// Score returns the scored claim. It never fails: a broken model reply
// falls back to a low base score and that result is not cached.
func (s *Scorer) Score(ctx context.Context, claim model.Claim, evidence []model.Evidence, id model.Identity) model.ClaimResult {
	if evidence == nil {
		evidence = []model.Evidence{}
	}

	key := ScoreKey(claim, evidence, id)
	if s.store != nil {
		if r, ok := s.store.ClaimResult(ctx, key); ok {
			return r
		}
	}

	base, explanation, err := s.assess(ctx, claim, evidence, id)
	if err != nil {
		s.logger.Error("scoring failed", logger.ClaimField(claim.Text), zap.Error(err))
		base, explanation = fallbackBase, fallbackExplanation
	}

	match := s.identity.Match(evidence, id)
	result := model.ClaimResult{
		Claim:      claim.Text,
		Category:   claim.Category,
		Importance: claim.Importance,
		Evidence:   evidence,
	}
	result.Score, result.Explanation = Combine(base, len(evidence), match, explanation)

	s.logger.Debug("scored claim",
		logger.ClaimField(claim.Text),
		zap.Int("base", base),
		zap.Stringer("identity", match.Kind),
		zap.Int("score", result.Score),
	)

	if err == nil && s.store != nil {
		s.store.SetClaimResult(ctx, key, result)
	}
	return result
}

// Placeholder is the result reported when a claim could not be assessed at all
func Placeholder(claim model.Claim, evidence []model.Evidence) model.ClaimResult {
	if evidence == nil {
		evidence = []model.Evidence{}
	}
	r := model.ClaimResult{
		Claim:      claim.Text,
		Category:   claim.Category,
		Importance: claim.Importance,
		Evidence:   evidence,
	}
	r.Score, r.Explanation = Combine(fallbackBase, len(evidence), IdentityMatch{}, fallbackExplanation)
	return r
}

// Combine applies the volume boost, identity bonus and caps to a base score
func Combine(base, evidenceCount int, match IdentityMatch, explanation string) (int, string) {
	base = clamp(base, 0, MaxBaseScore)
	explanation += match.Note()

	if base == 0 {
		return 0, unverifiedPrefix + explanation
	}

	score := min(base+Boost(evidenceCount)+match.Bonus, 100)
	if base < ConfirmedThreshold {
		score = min(score, UnconfirmedCap)
	}
	return score, explanation
}

// Boost rewards the number of independent sources found
func Boost(evidenceCount int) int {
	switch {
	case evidenceCount >= 3:
		return 10
	case evidenceCount == 2:
		return 5
	default:
		return 0
	}
}

// Overall is the importance-weighted mean of the claim scores
func Overall(results []model.ClaimResult) int {
	return model.OverallScore(results)
}

type rawAssessment struct {
	BaseScore   any `mapstructure:"base_score"`
	Explanation any `mapstructure:"explanation"`
}

func (s *Scorer) assess(ctx context.Context, claim model.Claim, evidence []model.Evidence, id model.Identity) (int, string, error) {
	system, prompt, err := buildPrompts(claim, evidence, id, s.now())
	if err != nil {
		return 0, "", err
	}

	raw, err := s.llm.Complete(ctx, llm.CompletionRequest{
		System:      system,
		Prompt:      prompt,
		Temperature: temperature,
	})
	if err != nil {
		return 0, "", fmt.Errorf("scoring request: %w", err)
	}

	var data rawAssessment
	if err := llm.ParseObject(raw).Decode(&data); err != nil {
		return 0, "", err
	}

	base, err := parseBase(data.BaseScore)
	if err != nil {
		return 0, "", err
	}
	explanation, _ := data.Explanation.(string)
	return base, explanation, nil
}

func parseBase(v any) (int, error) {
	switch b := v.(type) {
	case nil:
		return fallbackBase, nil
	case float64:
		return baseFromFloat(b)
	case int:
		return b, nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: base_score %q", llm.ErrMalformedReply, b)
		}
		return baseFromFloat(n)
	default:
		return 0, fmt.Errorf("%w: base_score of type %T", llm.ErrMalformedReply, v)
	}
}

// baseFromFloat clamps before converting so out-of-range values cannot wrap
func baseFromFloat(f float64) (int, error) {
	if math.IsNaN(f) {
		return 0, fmt.Errorf("%w: base_score is NaN", llm.ErrMalformedReply)
	}
	return int(math.Trunc(math.Max(0, math.Min(f, MaxBaseScore)))), nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
