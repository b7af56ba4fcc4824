package score

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/model"
)

const systemPromptFormat = "You are a professional fact-checker. Current date: %s. Verify if %s is linked to the claim. " +
	"Finding Name + Entity in a professional profile is worth 30+ points."

const rubric = `Base Scoring (0-70):
- 0: NOISE (Category mismatch or absolute nonsense)
- 1-25: WEAK (Entity found but name is missing or ambiguous in snippet)
- 26-45: PLAUSIBLE (Name and Entity both present in a professional context)
- 46-70: CONFIRMED (Verified by independent news, govt, or company registries)

Return JSON: {"base_score": int, "explanation": "short reason"}`

type promptEvidence struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

type promptContext struct {
	Candidate   string           `json:"candidate"`
	SocialLinks []string         `json:"social_links"`
	Claim       string           `json:"claim"`
	Evidence    []promptEvidence `json:"evidence"`
	CurrentDate string           `json:"current_date"`
}

func buildPrompts(claim model.Claim, evidence []model.Evidence, id model.Identity, now time.Time) (string, string, error) {
	fullName := id.FullName()
	date := now.Format("January 2006")

	links := id.SocialLinks
	if links == nil {
		links = []string{}
	}
	ctx := promptContext{
		Candidate:   fullName,
		SocialLinks: links,
		Claim:       claim.Text,
		Evidence:    make([]promptEvidence, 0, len(evidence)),
		CurrentDate: date,
	}
	for _, e := range evidence {
		ctx.Evidence = append(ctx.Evidence, promptEvidence{
			Title:   e.Title,
			Snippet: truncateRunes(e.Snippet, promptSnippetRunes),
			URL:     e.URL,
		})
	}

	data, err := json.MarshalIndent(ctx, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("encode scoring context: %w", err)
	}

	system := fmt.Sprintf(systemPromptFormat, date, fullName)
	prompt := fmt.Sprintf("Assess this claim for %s:\n%s\n\n%s", fullName, data, rubric)
	return system, prompt, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
