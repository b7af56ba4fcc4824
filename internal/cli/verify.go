package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/model"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/pipeline"
)

var (
	streamJSON    bool
	outPath       string
	verifyTimeout time.Duration
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <file|url>",
	Short: "Verify the claims of a single resume",
	Long: `Verify reads a resume (pdf, docx, doc, txt, md, html) from disk or a URL:
- Extract the candidate identity and factual claims
- Search the public web for evidence about each claim
- Score each claim 0-100 from the evidence found
- Report an importance-weighted overall score

Example:
  verifier verify cv.pdf
  verifier verify https://example.com/cv.pdf --out result.json
  verifier verify cv.docx --json | jq -c 'select(.event=="claim_result")'`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().BoolVar(&streamJSON, "json", false, "print the event stream as NDJSON")
	verifyCmd.Flags().StringVar(&outPath, "out", "", "write the final result JSON to this path")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 10*time.Minute, "overall verification timeout")
}

func runVerify(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), verifyTimeout)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	doc, filename, err := a.verifier.Load(ctx, source)
	if err != nil {
		return err
	}

	var r eventRenderer = &textRenderer{out: cmd.OutOrStdout(), status: cmd.ErrOrStderr()}
	if streamJSON {
		r = &ndjsonRenderer{enc: json.NewEncoder(cmd.OutOrStdout())}
	}

	result, err := render(r, a.verifier.Run(ctx, doc, filename))
	if err != nil {
		return err
	}

	if outPath != "" {
		if err := writeResult(outPath, result); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Result written to %s\n", outPath)
	}
	return nil
}

type eventRenderer interface {
	Render(ev model.Event) error
}

// render feeds every event to r and returns the final result, or the
// message of the error event
func render(r eventRenderer, events <-chan model.Event) (*model.VerificationResult, error) {
	var (
		result *model.VerificationResult
		err    = pipeline.ErrNoResult
	)
	for ev := range events {
		if rerr := r.Render(ev); rerr != nil {
			return nil, fmt.Errorf("render %s event: %w", ev.Type, rerr)
		}
		switch ev.Type {
		case model.EventComplete:
			var res model.VerificationResult
			if uerr := json.Unmarshal([]byte(ev.Data), &res); uerr != nil {
				err = fmt.Errorf("decode result: %w", uerr)
				continue
			}
			result, err = &res, nil
		case model.EventError:
			err = fmt.Errorf("%w: %s", pipeline.ErrVerificationFailed, errorMessage(ev))
		}
	}
	return result, err
}

func errorMessage(ev model.Event) string {
	var p model.ErrorPayload
	if err := json.Unmarshal([]byte(ev.Data), &p); err != nil || p.Message == "" {
		return ev.Data
	}
	return p.Message
}

// ndjsonRenderer writes one {"event":...,"data":{...}} object per line
type ndjsonRenderer struct {
	enc *json.Encoder
}

type ndjsonEvent struct {
	Event model.EventType `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (r *ndjsonRenderer) Render(ev model.Event) error {
	data := json.RawMessage(ev.Data)
	if !json.Valid(data) {
		quoted, err := json.Marshal(ev.Data)
		if err != nil {
			return err
		}
		data = quoted
	}
	return r.enc.Encode(ndjsonEvent{Event: ev.Type, Data: data})
}

// textRenderer prints progress to status and the report to out
type textRenderer struct {
	out    io.Writer
	status io.Writer
}

func (r *textRenderer) Render(ev model.Event) error {
	switch ev.Type {
	case model.EventProgress:
		var p model.ProgressPayload
		if err := json.Unmarshal([]byte(ev.Data), &p); err != nil {
			return err
		}
		fmt.Fprintf(r.status, "⚙️  %s\n", p.Message)
	case model.EventClaims:
		var p model.ClaimsPayload
		if err := json.Unmarshal([]byte(ev.Data), &p); err != nil {
			return err
		}
		name := strings.TrimSpace(p.FirstName + " " + p.LastName)
		if name == "" {
			name = "(unknown)"
		}
		fmt.Fprintf(r.status, "✓ Candidate: %s\n", name)
		for _, link := range p.SocialLinks {
			fmt.Fprintf(r.status, "    %s\n", link)
		}
		fmt.Fprintf(r.status, "✓ Found %d claims\n", len(p.Claims))
	case model.EventClaimResult:
		var res model.ClaimResult
		if err := json.Unmarshal([]byte(ev.Data), &res); err != nil {
			return err
		}
		fmt.Fprintf(r.status, "  [%3d] %s\n", res.Score, res.Claim)
	case model.EventComplete:
		var res model.VerificationResult
		if err := json.Unmarshal([]byte(ev.Data), &res); err != nil {
			return err
		}
		printReport(r.out, &res)
	case model.EventError:
		fmt.Fprintf(r.status, "✗ %s\n", errorMessage(ev))
	}
	return nil
}

func printReport(w io.Writer, res *model.VerificationResult) {
	rule := strings.Repeat("═", 59)
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  %s %s\n", res.FirstName, res.LastName)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Overall score:  %d/100\n", res.OverallScore)
	fmt.Fprintf(w, "  Claims:         %d\n", len(res.Claims))
	fmt.Fprintln(w)
	for i, c := range res.Claims {
		fmt.Fprintf(w, "  %d. [%d] %s (%s, importance %d)\n", i+1, c.Score, c.Claim, c.Category, c.Importance)
		if c.Explanation != "" {
			fmt.Fprintf(w, "     %s\n", c.Explanation)
		}
		for _, e := range c.Evidence {
			fmt.Fprintf(w, "     - %s\n", e.URL)
		}
	}
	fmt.Fprintln(w)
}

func writeResult(path string, res *model.VerificationResult) error {
	if res == nil {
		return errors.New("no result to write")
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
