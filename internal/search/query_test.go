package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/model"
)

func TestNameVariants(t *testing.T) {
	id := model.Identity{
		FirstName: "Mofeoluwa",
		LastName:  "Adeyemi",
		SocialLinks: []string{
			"https://www.linkedin.com/in/MofeAdeyemi/",
			"https://github.com/bob",
			"https://github.com/mofeadeyemi",
			"https://example.com",
		},
	}
	assert.Equal(t, []string{"Mofeoluwa Adeyemi", "Mofeadeyemi Adeyemi"}, NameVariants(id))
}

func TestNameVariants_NoName(t *testing.T) {
	assert.Empty(t, NameVariants(model.Identity{}))
}

func TestBroadQuery(t *testing.T) {
	assert.Equal(t, `("John Smith" OR "Jsmith Smith") Senior Engineer at Acme`,
		BroadQuery("Senior Engineer at Acme", []string{"John Smith", "Jsmith Smith"}))
	assert.Equal(t, "claim only", BroadQuery("claim only", nil))
}

func TestSiteQuery(t *testing.T) {
	q, ok := SiteQuery("Built Kubernetes operator", []string{"https://example.com", "https://github.com/JohnSmith/"})
	assert.True(t, ok)
	assert.Equal(t, `site:github.com "JohnSmith" Built Kubernetes operator`, q)

	_, ok = SiteQuery("x", []string{"https://example.com/", "not a url"})
	assert.False(t, ok)
}

func TestIncludeDomains(t *testing.T) {
	got := IncludeDomains([]string{"https://github.com/a", "https://github.com/b", "", "linkedin.com/in/x", "https://johnsmith.dev"})
	assert.Equal(t, []string{"github.com", "johnsmith.dev"}, got)
}

func TestNormalizeSnippet(t *testing.T) {
	assert.Equal(t, "Senior Engineer at Acme & Co", NormalizeSnippet("Senior   Engineer\n at <b>Acme</b> &amp; Co", 500))
	assert.Equal(t, "plain text", NormalizeSnippet("  plain\ttext ", 500))
	assert.Equal(t, "visible", NormalizeSnippet("<script>alert(1)</script>visible", 500))

	long := strings.Repeat("ü", 600)
	assert.Len(t, []rune(NormalizeSnippet(long, 500)), 500)
}

func TestNormalizeSnippet_ProseKeepsAngleBrackets(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{
			"He wrote about using the <script> tag to embed widgets; he led the Acme Corp frontend team 2020-2023.",
			"He wrote about using the <script> tag to embed widgets; he led the Acme Corp frontend team 2020-2023.",
		},
		{"Salary a<b and John   Smith was at Acme", "Salary a<b and John Smith was at Acme"},
		{"List<String> parsing", "List<String> parsing"},
		{"Tom &amp; Jerry <style> notes", "Tom & Jerry <style> notes"},
		{"R&D lead at Acme", "R&D lead at Acme"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSnippet(tt.in, 500))
		})
	}
}
