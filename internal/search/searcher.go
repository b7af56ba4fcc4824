package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/cache"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/logger"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/model"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/worker"
)

const (
	primaryMaxResults  = 15
	fallbackMaxResults = 10
	// fallbackThreshold triggers the broad query when the primary returns fewer hits
	fallbackThreshold = 3
)

// Searcher collects evidence for claims through a search Client
type Searcher struct {
	client  Client
	store   *cache.Store
	logger  *zap.Logger
	workers int
}

// NewSearcher creates a searcher. A nil store disables caching.
func NewSearcher(client Client, store *cache.Store, workers int, log *zap.Logger) *Searcher {
	if workers <= 0 {
		workers = 1
	}
	return &Searcher{client: client, store: store, logger: logger.OrNop(log), workers: workers}
}

// EvidenceKey is the cache hash of a claim searched for a given identity
func EvidenceKey(claim model.Claim, id model.Identity) string {
	return cache.Hash(claim.Text, id.FirstName, id.LastName, strings.Join(id.SocialLinks, ""))
}

// SearchClaim returns up to model.MaxEvidence URL-unique evidence items for
// one claim. Results are cached; failures are returned and not cached.
func (s *Searcher) SearchClaim(ctx context.Context, claim model.Claim, id model.Identity) ([]model.Evidence, error) {
	key := EvidenceKey(claim, id)
	if s.store != nil {
		if evidence, ok := s.store.Evidence(ctx, key); ok {
			return evidence, nil
		}
	}

	broad := BroadQuery(claim.Text, NameVariants(id))
	primary := broad
	if site, ok := SiteQuery(claim.Text, id.SocialLinks); ok {
		primary = site
	}

	resp, err := s.client.Search(ctx, Request{
		Query:          primary,
		Depth:          DepthAdvanced,
		MaxResults:     primaryMaxResults,
		IncludeDomains: IncludeDomains(id.SocialLinks),
	})
	if err != nil {
		return nil, fmt.Errorf("primary search: %w", err)
	}
	results := resp.Results

	if len(results) < fallbackThreshold && primary != broad {
		extra, err := s.client.Search(ctx, Request{
			Query:      broad,
			Depth:      DepthAdvanced,
			MaxResults: fallbackMaxResults,
		})
		if err != nil {
			return nil, fmt.Errorf("fallback search: %w", err)
		}
		results = append(results, extra.Results...)
	}

	evidence := toEvidence(results)
	if s.store != nil {
		s.store.SetEvidence(ctx, key, evidence)
	}
	return evidence, nil
}

// SearchAll searches every claim concurrently and waits for all of them.
// A failing or panicking claim maps to an empty list without affecting the others.
func (s *Searcher) SearchAll(ctx context.Context, claims []model.Claim, id model.Identity) map[string][]model.Evidence {
	out := make(map[string][]model.Evidence, len(claims))
	if len(claims) == 0 {
		return out
	}

	jobs := make([]worker.Job, len(claims))
	for i, c := range claims {
		jobs[i] = &searchJob{searcher: s, claim: c, identity: id, ctx: ctx}
		out[c.Text] = []model.Evidence{}
	}

	start := time.Now()
	for res := range worker.Stream(s.workers, jobs) {
		switch r := res.(type) {
		case *searchResult:
			if r.err != nil {
				s.logger.Warn("claim search failed", logger.ClaimField(r.claim.Text), zap.Error(r.err))
				continue
			}
			out[r.claim.Text] = r.evidence
		case *worker.PanicResult:
			job := r.Job.(*searchJob)
			s.logger.Error("claim search panicked",
				logger.ClaimField(job.claim.Text),
				zap.Error(r.Err),
				zap.ByteString("stack", r.Err.Stack),
			)
		}
	}
	s.logger.Debug("searched claims", zap.Int("claims", len(claims)), zap.Duration("elapsed", time.Since(start)))

	return out
}

type searchJob struct {
	searcher *Searcher
	claim    model.Claim
	identity model.Identity
	ctx      context.Context
}

func (j *searchJob) Execute(context.Context) worker.Result {
	evidence, err := j.searcher.SearchClaim(j.ctx, j.claim, j.identity)
	return &searchResult{claim: j.claim, evidence: evidence, err: err}
}

type searchResult struct {
	claim    model.Claim
	evidence []model.Evidence
	err      error
}

func (r *searchResult) GetError() error { return r.err }

func toEvidence(results []Result) []model.Evidence {
	evidence := make([]model.Evidence, 0, model.MaxEvidence)
	seen := make(map[string]bool)
	for _, r := range results {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true

		var relevance string
		if r.Score > 0 {
			relevance = fmt.Sprintf("%.2f", r.Score)
		}

		evidence = append(evidence, model.Evidence{
			Title:     strings.TrimSpace(r.Title),
			URL:       r.URL,
			Snippet:   NormalizeSnippet(r.Content, model.MaxSnippetRunes),
			Relevance: relevance,
		})
		if len(evidence) == model.MaxEvidence {
			break
		}
	}
	return evidence
}
