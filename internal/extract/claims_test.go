package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/llm"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/model"
)

type fakeCompleter struct {
	reply string
	err   error
	got   llm.CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	f.got = req
	return f.reply, f.err
}

func TestExtract_Basic(t *testing.T) {
	fake := &fakeCompleter{reply: "```json\n" + `{
		"first_name": " John ",
		"last_name": "Smith",
		"social_links": ["https://github.com/johnsmith", "", 42, " https://linkedin.com/in/jsmith "],
		"claims": [
			{"claim": "Senior Engineer at Acme Corp 2020-2023", "category": "employment", "importance": 5},
			{"claim": "'BSc Computer Science, MIT'", "category": "Education", "importance": "4"}
		]
	}` + "\n```"}

	out, err := NewClaimExtractor(fake, nil).Extract(context.Background(), "resume text")
	require.NoError(t, err)

	assert.Equal(t, "John", out.Identity.FirstName)
	assert.Equal(t, "Smith", out.Identity.LastName)
	assert.Equal(t, []string{"https://github.com/johnsmith", "https://linkedin.com/in/jsmith"}, out.Identity.SocialLinks)

	require.Len(t, out.Claims, 2)
	assert.Equal(t, model.Claim{Text: "Senior Engineer at Acme Corp 2020-2023", Category: model.CategoryEmployment, Importance: 5}, out.Claims[0])
	assert.Equal(t, model.Claim{Text: "BSc Computer Science, MIT", Category: model.CategoryEducation, Importance: 4}, out.Claims[1])

	assert.Equal(t, systemPrompt, fake.got.System)
	assert.InDelta(t, 0.1, fake.got.Temperature, 0.0001)
	assert.Contains(t, fake.got.Prompt, "---\nresume text\n---")
}

func TestExtract_DefaultsAndSkips(t *testing.T) {
	fake := &fakeCompleter{reply: `{
		"first_name": "Ada",
		"last_name": "Lovelace",
		"claims": [
			{"claim": "Knows Go"},
			{"claim": "Wrote a compiler", "category": "hobby", "importance": 4},
			{"claim": "Led team of 10", "category": "achievement", "importance": "very"},
			{"claim": "   ", "category": "skill", "importance": 2},
			{"claim": "Published paper", "category": "project", "importance": 9},
			{"claim": "Intern", "category": "employment", "importance": -2},
			{"claim": "Knows Go", "category": "skill", "importance": 1},
			"not an object",
			{"claim": "Kubernetes certified", "category": "certification", "importance": 3.7}
		]
	}`}

	out, err := NewClaimExtractor(fake, nil).Extract(context.Background(), "x")
	require.NoError(t, err)

	assert.Empty(t, out.Identity.SocialLinks)
	require.Len(t, out.Claims, 4)

	assert.Equal(t, model.Claim{Text: "Knows Go", Category: model.CategorySkill, Importance: 3}, out.Claims[0])
	assert.Equal(t, 5, out.Claims[1].Importance)
	assert.Equal(t, "Published paper", out.Claims[1].Text)
	assert.Equal(t, 1, out.Claims[2].Importance)
	assert.Equal(t, 3, out.Claims[3].Importance)
}

func TestExtract_CapsClaims(t *testing.T) {
	var claims []string
	for i := 0; i < 12; i++ {
		claims = append(claims, fmt.Sprintf(`{"claim": "claim %d", "category": "skill", "importance": 2}`, i))
	}
	fake := &fakeCompleter{reply: `{"first_name":"A","last_name":"B","claims":[` + strings.Join(claims, ",") + `]}`}

	out, err := NewClaimExtractor(fake, nil).Extract(context.Background(), "x")
	require.NoError(t, err)
	require.Len(t, out.Claims, MaxClaims)
	assert.Equal(t, "claim 0", out.Claims[0].Text)
	assert.Equal(t, "claim 7", out.Claims[7].Text)
}

func TestExtract_MalformedReply(t *testing.T) {
	for _, reply := range []string{"Sorry, I can't read that resume.", `{"claims": [`, `{"claims": "nope", "social_links": {"a": 1}}`} {
		out, err := NewClaimExtractor(&fakeCompleter{reply: reply}, nil).Extract(context.Background(), "x")
		require.NoError(t, err, reply)
		assert.Empty(t, out.Claims, reply)
	}
}

func TestExtract_RequestFailure(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := NewClaimExtractor(&fakeCompleter{err: boom}, nil).Extract(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
}

func TestExtract_TruncatesInput(t *testing.T) {
	fake := &fakeCompleter{reply: `{}`}
	text := strings.Repeat("é", MaxInputRunes+500)

	_, err := NewClaimExtractor(fake, nil).Extract(context.Background(), text)
	require.NoError(t, err)

	body := fake.got.Prompt[strings.Index(fake.got.Prompt, "---\n")+4:]
	body = body[:strings.Index(body, "\n---")]
	assert.Equal(t, MaxInputRunes, utf8.RuneCountInString(body))
}
