package search

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	openTag  = regexp.MustCompile(`<[a-zA-Z][a-zA-Z0-9-]*(\s[^<>]*)?/?>`)
	closeTag = regexp.MustCompile(`</[a-zA-Z][a-zA-Z0-9-]*\s*>`)
)

// NormalizeSnippet drops markup, decodes entities, collapses whitespace and
// cuts the result to maxRunes. Text is parsed as HTML only when it carries
// both an opening and a closing tag; prose such as "a<b" or "List<String>"
// is kept verbatim.
func NormalizeSnippet(s string, maxRunes int) string {
	text := s
	switch {
	case looksLikeMarkup(s):
		if doc, err := html.Parse(strings.NewReader(s)); err == nil {
			text = visibleText(doc)
		}
	case strings.Contains(s, "&"):
		text = html.UnescapeString(s)
	}

	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) > maxRunes {
		return string(runes[:maxRunes])
	}
	return text
}

func looksLikeMarkup(s string) bool {
	return openTag.MatchString(s) && closeTag.MatchString(s)
}

// visibleText extracts text nodes, skipping scripts and styles
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteString(" ")
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}
