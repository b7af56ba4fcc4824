package model

const (
	// MaxEvidence caps the evidence list kept per claim
	MaxEvidence = 10
	// MaxSnippetRunes caps the stored snippet length
	MaxSnippetRunes = 500
)

// Evidence represents one web search hit associated with a claim
type Evidence struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Snippet   string `json:"snippet"`
	Relevance string `json:"relevance"` // Search engine relevance, empty when unknown
}

// EvidenceURLs returns the URLs of the evidence list in order
func EvidenceURLs(evidence []Evidence) []string {
	urls := make([]string, 0, len(evidence))
	for _, e := range evidence {
		urls = append(urls, e.URL)
	}
	return urls
}
