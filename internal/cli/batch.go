package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <list-file>",
	Short: "Verify many resumes listed in a file",
	Long: `Batch verifies every resume path or URL listed in a file (one per line,
# starts a comment) with a bounded number of concurrent runs, and writes
one result JSON per resume.

Example:
  verifier batch resumes.txt
  verifier batch resumes.txt --concurrency 4 --output-dir ./results`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of resumes verified at once")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./verifier-results", "output directory for result files")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	status := cmd.ErrOrStderr()
	rule := strings.Repeat("═", 59)

	fmt.Fprintf(status, "\n%s\n  Resume Batch Verification\n%s\n\n", rule, rule)
	fmt.Fprintf(status, "  Input file:   %s\n", file)
	fmt.Fprintf(status, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(status, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(status, "  Timeout:      %v\n\n", batchTimeout)

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(a.verifier, concurrency)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	names := outputNames(results)
	successCount, failureCount := 0, 0
	for i, res := range results {
		if res.Error != nil {
			failureCount++
			fmt.Fprintf(status, "✗ %s: %v\n", res.Path, res.Error)
			continue
		}

		path := filepath.Join(outputDir, names[i])
		if err := writeResult(path, res.Result); err != nil {
			failureCount++
			fmt.Fprintf(status, "✗ %s: %v\n", res.Path, err)
			continue
		}
		successCount++
		fmt.Fprintf(status, "✓ %s (score: %d/100)\n", res.Path, res.Result.OverallScore)
	}

	fmt.Fprintf(status, "\n%s\n  Batch Complete\n%s\n\n", rule, rule)
	fmt.Fprintf(status, "  Total:     %d resumes\n", len(results))
	fmt.Fprintf(status, "  Success:   %d\n", successCount)
	fmt.Fprintf(status, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(status, "  Output:    %s\n\n", outputDir)

	if failureCount > 0 {
		return fmt.Errorf("%d of %d verifications failed", failureCount, len(results))
	}
	return nil
}

// outputNames picks a unique <name>.json for each result
func outputNames(results []*worker.VerifyResult) []string {
	names := make([]string, len(results))
	used := make(map[string]int)
	for i, res := range results {
		base := sanitizeFilename(strings.TrimSuffix(filepath.Base(res.Path), filepath.Ext(res.Path)))
		if base == "" {
			base = "resume"
		}
		used[base]++
		if n := used[base]; n > 1 {
			base = fmt.Sprintf("%s-%d", base, n)
		}
		names[i] = base + ".json"
	}
	return names
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	s = filenameReplacer.Replace(strings.TrimSpace(s))
	s = strings.Trim(s, ".")

	// Limit length
	if r := []rune(s); len(r) > 100 {
		s = string(r[:100])
	}
	return s
}
