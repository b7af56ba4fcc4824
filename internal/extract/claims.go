// Package extract turns resume text into a candidate identity and a bounded claim set.
package extract

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/llm"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/logger"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/model"
)

const (
	// MaxInputRunes bounds the resume text sent to the model
	MaxInputRunes = 6000
	// MaxClaims caps the claims kept per document
	MaxClaims = 8

	defaultImportance = 3
	temperature       = 0.1
)

// Extraction is the identity and claims found in one document
type Extraction struct {
	Identity model.Identity
	Claims   []model.Claim
}

// ClaimExtractor asks a Completer for the identity and claims of a resume
type ClaimExtractor struct {
	llm    llm.Completer
	logger *zap.Logger
}

// NewClaimExtractor creates a new claim extractor
func NewClaimExtractor(c llm.Completer, log *zap.Logger) *ClaimExtractor {
	return &ClaimExtractor{llm: c, logger: logger.OrNop(log)}
}

type rawExtraction struct {
	FirstName   any   `mapstructure:"first_name"`
	LastName    any   `mapstructure:"last_name"`
	SocialLinks []any `mapstructure:"social_links"`
	Claims      []any `mapstructure:"claims"`
}

type rawClaim struct {
	Claim      string `mapstructure:"claim"`
	Category   any    `mapstructure:"category"`
	Importance any    `mapstructure:"importance"`
}

// Extract returns the identity and up to MaxClaims claims found in text.
// A failed request is an error. An unparseable reply yields an empty
// Extraction and no error.
func (e *ClaimExtractor) Extract(ctx context.Context, text string) (Extraction, error) {
	raw, err := e.llm.Complete(ctx, llm.CompletionRequest{
		System:      systemPrompt,
		Prompt:      BuildPrompt(truncateRunes(text, MaxInputRunes)),
		Temperature: temperature,
	})
	if err != nil {
		return Extraction{}, fmt.Errorf("claim extraction request: %w", err)
	}

	reply := llm.ParseObject(raw)
	if !reply.OK() {
		e.logger.Error("unparseable extraction reply",
			zap.Error(reply.Err),
			zap.String("reply", logger.TruncateForLog(reply.Raw, 200)),
		)
		return Extraction{}, nil
	}

	var data rawExtraction
	if err := reply.Decode(&data); err != nil {
		e.logger.Error("extraction reply has unexpected shape", zap.Error(err))
		return Extraction{}, nil
	}

	out := Extraction{
		Identity: model.Identity{
			FirstName:   stringField(data.FirstName),
			LastName:    stringField(data.LastName),
			SocialLinks: socialLinks(data.SocialLinks),
		},
	}

	seen := make(map[string]bool)
	for i, c := range data.Claims {
		claim, ok := parseClaim(c)
		if !ok {
			e.logger.Debug("skipping invalid claim", zap.Int("index", i))
			continue
		}
		if seen[claim.Text] {
			continue
		}
		seen[claim.Text] = true
		out.Claims = append(out.Claims, claim)
		if len(out.Claims) == MaxClaims {
			break
		}
	}

	return out, nil
}

func parseClaim(v any) (model.Claim, bool) {
	if _, ok := v.(map[string]any); !ok {
		return model.Claim{}, false
	}

	var rc rawClaim
	if err := llm.DecodeLoose(v, &rc); err != nil {
		return model.Claim{}, false
	}

	text := strings.Trim(rc.Claim, "'\" ")
	if text == "" {
		return model.Claim{}, false
	}

	category := model.CategorySkill
	if rc.Category != nil {
		s, ok := rc.Category.(string)
		if !ok {
			return model.Claim{}, false
		}
		if category, ok = model.ParseCategory(s); !ok {
			return model.Claim{}, false
		}
	}

	importance := defaultImportance
	if rc.Importance != nil {
		if s, isString := rc.Importance.(string); isString && strings.TrimSpace(s) == "" {
			return model.Claim{}, false
		}
		if err := llm.DecodeLoose(rc.Importance, &importance); err != nil {
			return model.Claim{}, false
		}
	}

	return model.Claim{
		Text:       text,
		Category:   category,
		Importance: model.ClampImportance(importance),
	}, true
}

func stringField(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func socialLinks(raw []any) []string {
	links := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			links = append(links, s)
		}
	}
	return links
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
