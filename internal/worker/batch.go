package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/model"
)

// FileVerifier verifies one resume file on disk
type FileVerifier interface {
	VerifyFile(ctx context.Context, path string) (*model.VerificationResult, error)
}

// VerifyJob represents one resume verification
type VerifyJob struct {
	Path     string
	Verifier FileVerifier
	Ctx      context.Context // overrides the pool context when set
}

// Execute executes the verification job
func (j *VerifyJob) Execute(ctx context.Context) Result {
	if j.Ctx != nil {
		ctx = j.Ctx
	}
	result, err := j.Verifier.VerifyFile(ctx, j.Path)
	return &VerifyResult{Path: j.Path, Result: result, Error: err}
}

// VerifyResult represents the outcome of a verification job
type VerifyResult struct {
	Path   string
	Result *model.VerificationResult
	Error  error
}

// GetError returns the error from the verification
func (r *VerifyResult) GetError() error {
	return r.Error
}

// BatchProcessor verifies multiple resumes concurrently
type BatchProcessor struct {
	verifier    FileVerifier
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(verifier FileVerifier, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		verifier:    verifier,
		concurrency: concurrency,
	}
}

// ProcessPaths verifies every path and returns results in input order
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*VerifyResult {
	if len(paths) == 0 {
		return []*VerifyResult{}
	}

	jobs := make([]Job, len(paths))
	for i, path := range paths {
		jobs[i] = &VerifyJob{Path: path, Verifier: b.verifier, Ctx: ctx}
	}

	byPath := make(map[string]*VerifyResult, len(paths))
	for res := range Stream(b.concurrency, jobs) {
		switch r := res.(type) {
		case *VerifyResult:
			byPath[r.Path] = r
		case *PanicResult:
			job := r.Job.(*VerifyJob)
			byPath[job.Path] = &VerifyResult{Path: job.Path, Error: r.Err}
		}
	}

	out := make([]*VerifyResult, len(paths))
	for i, path := range paths {
		out[i] = byPath[path]
	}
	return out
}

// ProcessFile reads paths from a list file and verifies them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*VerifyResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads file paths (one per line, # comments) and deduplicates them
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
