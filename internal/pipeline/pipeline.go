// Package pipeline runs one verification from document bytes to a scored,
// cached result and reports its progress as an ordered event stream.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/cache"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/document"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/extract"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/logger"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/model"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/score"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/worker"
)

// MinTextLength is the shortest trimmed document text worth verifying
const MinTextLength = 50

const (
	msgParsing    = "Extracting text..."
	msgExtracting = "Identifying claims..."
	msgSearching  = "Searching web..."
	msgScoring    = "Evaluating evidence..."

	msgNoText   = "Could not extract text."
	msgNoClaims = "No claims found."
)

// TextExtractor turns an uploaded file into plain text
type TextExtractor interface {
	Extract(data []byte, filename string) (string, error)
}

// TextExtractorFunc adapts a function to TextExtractor
type TextExtractorFunc func(data []byte, filename string) (string, error)

func (f TextExtractorFunc) Extract(data []byte, filename string) (string, error) {
	return f(data, filename)
}

// ClaimExtractor finds the candidate identity and claims in resume text
type ClaimExtractor interface {
	Extract(ctx context.Context, text string) (extract.Extraction, error)
}

// EvidenceSearcher collects evidence for every claim, keyed by claim text
type EvidenceSearcher interface {
	SearchAll(ctx context.Context, claims []model.Claim, id model.Identity) map[string][]model.Evidence
}

// ClaimScorer rates one claim against its evidence
type ClaimScorer interface {
	Score(ctx context.Context, claim model.Claim, evidence []model.Evidence, id model.Identity) model.ClaimResult
}

// Options holds the collaborators of a Verifier
type Options struct {
	Store    *cache.Store  // nil disables result caching
	Text     TextExtractor // defaults to document.Extract
	Fetcher  *Fetcher      // downloads URL sources, defaults to NewFetcher
	Claims   ClaimExtractor
	Searcher EvidenceSearcher
	Scorer   ClaimScorer
	Workers  int
	Logger   *zap.Logger
}

// Verifier orchestrates verification runs
type Verifier struct {
	store    *cache.Store
	text     TextExtractor
	fetcher  *Fetcher
	claims   ClaimExtractor
	searcher EvidenceSearcher
	scorer   ClaimScorer
	workers  int
	logger   *zap.Logger
}

// NewVerifier creates a verifier from its collaborators
func NewVerifier(opts Options) *Verifier {
	text := opts.Text
	if text == nil {
		text = TextExtractorFunc(document.Extract)
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = NewFetcher(nil, DefaultFetchTimeout, DefaultUserAgent, DefaultMaxBytes)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Verifier{
		store:    opts.Store,
		text:     text,
		fetcher:  fetcher,
		claims:   opts.Claims,
		searcher: opts.Searcher,
		scorer:   opts.Scorer,
		workers:  workers,
		logger:   logger.OrNop(opts.Logger),
	}
}

// Run verifies doc and streams the run's events. The channel is closed after
// the terminal complete or error event. Cancelling ctx stops delivery only:
// work already dispatched finishes and still fills the cache.
func (v *Verifier) Run(ctx context.Context, doc []byte, filename string) <-chan model.Event {
	runID := uuid.NewString()
	r := &run{
		verifier: v,
		ctx:      ctx,
		work:     context.WithoutCancel(ctx),
		out:      make(chan model.Event),
		doc:      doc,
		filename: filename,
		logger: logger.WithFields(v.logger,
			zap.String(logger.FieldRunID, runID),
			zap.String(logger.FieldDocument, filename),
		),
	}
	go r.execute()
	return r.out
}

// VerifyFile verifies a local file or an http(s) URL and waits for the result
func (v *Verifier) VerifyFile(ctx context.Context, source string) (*model.VerificationResult, error) {
	data, name, err := v.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	return Collect(v.Run(ctx, data, name))
}

// Load reads a document from a local path or downloads it from a URL
func (v *Verifier) Load(ctx context.Context, source string) ([]byte, string, error) {
	if IsURL(source) {
		res, err := v.fetcher.Fetch(ctx, source)
		if err != nil {
			return nil, "", fmt.Errorf("download document: %w", err)
		}
		return res.Data, res.Filename, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, "", fmt.Errorf("read document: %w", err)
	}
	return data, filepath.Base(source), nil
}

var errDisconnected = errors.New("consumer disconnected")

// failure is a terminal condition with a message meant for the consumer
type failure struct {
	message string
	err     error
}

func (f *failure) Error() string {
	if f.err != nil {
		return f.message + ": " + f.err.Error()
	}
	return f.message
}

func (f *failure) Unwrap() error { return f.err }

type run struct {
	verifier *Verifier
	ctx      context.Context // consumer lifetime
	work     context.Context // detached, for external calls
	out      chan model.Event
	doc      []byte
	filename string
	logger   *zap.Logger
	gone     bool
}

func (r *run) execute() {
	start := time.Now()
	defer close(r.out)
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("verification panicked", zap.Any("panic", p), zap.ByteString("stack", debug.Stack()))
			r.fail(fmt.Sprintf("Service failed: %v", p))
		}
	}()

	err := r.verify()
	switch {
	case err == nil:
		r.logger.Info("verification finished", zap.Duration("elapsed", time.Since(start)))
	case errors.Is(err, errDisconnected):
		r.logger.Info("consumer disconnected", zap.Duration("elapsed", time.Since(start)))
	default:
		var f *failure
		if errors.As(err, &f) {
			r.logger.Warn("verification stopped", zap.Error(err))
			r.fail(f.message)
			return
		}
		r.logger.Error("verification failed", zap.Error(err))
		r.fail("Service failed: " + err.Error())
	}
}

func (r *run) verify() error {
	v := r.verifier
	docHash := cache.HashBytes(r.doc)

	if v.store != nil {
		if data, ok := v.store.Result(r.work, docHash); ok {
			err := r.replay(data)
			if err == nil || errors.Is(err, errDisconnected) {
				return err
			}
			r.logger.Warn("ignoring unreadable cached result", zap.Error(err))
		}
	}

	if err := r.progress(model.StepParsing, msgParsing); err != nil {
		return err
	}
	stageStart := time.Now()
	text, err := v.text.Extract(r.doc, r.filename)
	if err != nil {
		return &failure{message: msgNoText, err: err}
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTextLength {
		return &failure{message: msgNoText}
	}
	r.stageDone(model.StepParsing, stageStart)

	if err := r.progress(model.StepExtracting, msgExtracting); err != nil {
		return err
	}
	stageStart = time.Now()
	ex, err := v.claims.Extract(r.work, text)
	if err != nil {
		return err
	}
	if len(ex.Claims) == 0 {
		return &failure{message: msgNoClaims}
	}
	r.stageDone(model.StepExtracting, stageStart)

	if err := r.send(model.EventClaims, model.NewClaimsPayload(ex.Identity, ex.Claims)); err != nil {
		return err
	}

	if err := r.progress(model.StepSearching, msgSearching); err != nil {
		return err
	}
	stageStart = time.Now()
	evidence := v.searcher.SearchAll(r.work, ex.Claims, ex.Identity)
	r.stageDone(model.StepSearching, stageStart)

	if err := r.progress(model.StepScoring, msgScoring); err != nil {
		return err
	}
	stageStart = time.Now()
	results, err := r.scoreAll(ex.Claims, evidence, ex.Identity)
	if err != nil {
		return err
	}
	r.stageDone(model.StepScoring, stageStart)

	id := ex.Identity
	links := id.SocialLinks
	if links == nil {
		links = []string{}
	}
	result := model.VerificationResult{
		Success:      true,
		OverallScore: score.Overall(results),
		Claims:       results,
		ResumeName:   r.filename,
		FirstName:    id.FirstName,
		LastName:     id.LastName,
		SocialLinks:  links,
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if v.store != nil {
		v.store.SetResult(r.work, docHash, data)
	}
	return r.emit(model.RawEvent(model.EventComplete, data))
}

// replay streams a cached result with the same event shape as a fresh run
func (r *run) replay(data []byte) error {
	var cached model.VerificationResult
	if err := json.Unmarshal(data, &cached); err != nil {
		return err
	}
	r.logger.Info("cache hit", zap.Int("claims", len(cached.Claims)))

	claims := make([]model.Claim, 0, len(cached.Claims))
	for _, c := range cached.Claims {
		claims = append(claims, model.Claim{Text: c.Claim, Category: c.Category, Importance: c.Importance})
	}
	if err := r.send(model.EventClaims, model.NewClaimsPayload(cached.Identity(), claims)); err != nil {
		return err
	}
	for _, c := range cached.Claims {
		if err := r.send(model.EventClaimResult, c); err != nil {
			return err
		}
	}
	return r.emit(model.RawEvent(model.EventComplete, data))
}

type scoreJob struct {
	index    int
	claim    model.Claim
	evidence []model.Evidence
	identity model.Identity
	scorer   ClaimScorer
	ctx      context.Context
}

func (j *scoreJob) Execute(context.Context) worker.Result {
	return &scoreResult{index: j.index, result: j.scorer.Score(j.ctx, j.claim, j.evidence, j.identity)}
}

type scoreResult struct {
	index  int
	result model.ClaimResult
}

func (r *scoreResult) GetError() error { return nil }

// scoreAll scores claims on the worker pool and emits each result as it
// completes. After a disconnect the remaining results are still drained.
// The returned slice is in claim order.
func (r *run) scoreAll(claims []model.Claim, evidence map[string][]model.Evidence, id model.Identity) ([]model.ClaimResult, error) {
	jobs := make([]worker.Job, len(claims))
	for i, c := range claims {
		jobs[i] = &scoreJob{
			index:    i,
			claim:    c,
			evidence: evidence[c.Text],
			identity: id,
			scorer:   r.verifier.scorer,
			ctx:      r.work,
		}
	}

	type indexed struct {
		index  int
		result model.ClaimResult
	}
	done := make([]indexed, 0, len(claims))

	var sendErr error
	for res := range worker.Stream(r.verifier.workers, jobs) {
		var item indexed
		switch res := res.(type) {
		case *scoreResult:
			item = indexed{res.index, res.result}
		case *worker.PanicResult:
			job := res.Job.(*scoreJob)
			r.logger.Error("claim scoring panicked",
				logger.ClaimField(job.claim.Text),
				zap.Error(res.Err),
				zap.ByteString("stack", res.Err.Stack),
			)
			item = indexed{job.index, score.Placeholder(job.claim, job.evidence)}
		default:
			continue
		}
		done = append(done, item)

		if sendErr == nil {
			sendErr = r.send(model.EventClaimResult, item.result)
		}
	}
	if sendErr != nil {
		return nil, sendErr
	}

	sort.Slice(done, func(a, b int) bool { return done[a].index < done[b].index })
	results := make([]model.ClaimResult, len(done))
	for i, d := range done {
		results[i] = d.result
	}
	return results, nil
}

func (r *run) progress(step model.Step, message string) error {
	return r.send(model.EventProgress, model.ProgressPayload{Step: step, Message: message})
}

func (r *run) send(t model.EventType, payload any) error {
	ev, err := model.NewEvent(t, payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", t, err)
	}
	return r.emit(ev)
}

// emit delivers ev unless the consumer has gone away
func (r *run) emit(ev model.Event) error {
	if r.gone || r.ctx.Err() != nil {
		r.gone = true
		return errDisconnected
	}
	select {
	case r.out <- ev:
		return nil
	case <-r.ctx.Done():
		r.gone = true
		return errDisconnected
	}
}

func (r *run) fail(message string) {
	ev, err := model.NewEvent(model.EventError, model.ErrorPayload{Message: message})
	if err != nil {
		return
	}
	_ = r.emit(ev)
}

func (r *run) stageDone(step model.Step, start time.Time) {
	r.logger.Debug("stage finished", zap.String(logger.FieldStep, string(step)), zap.Duration("elapsed", time.Since(start)))
}
