// Package search gathers web evidence for resume claims.
package search

import "context"

// Depth selects how thoroughly the search service crawls
type Depth string

const (
	DepthBasic    Depth = "basic"
	DepthAdvanced Depth = "advanced"
)

// Request is one web-search call
type Request struct {
	Query          string
	Depth          Depth
	MaxResults     int
	IncludeDomains []string // Empty means no domain filter
}

// Result is one hit returned by the search service
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Response holds the hits of one request in service order
type Response struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
}

// Client is a web-search service
type Client interface {
	Search(ctx context.Context, req Request) (*Response, error)
}
