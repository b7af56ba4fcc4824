package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/config"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/httputil"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/util"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/worker"
)

const defaultTavilyBase = "https://api.tavily.com"

// TavilyClient calls the Tavily search API
type TavilyClient struct {
	Client     *http.Client
	APIKey     string
	BaseURL    string
	MaxRetries int
	Limiter    *worker.Limiter
}

// NewTavilyClient builds a client from the search and HTTP settings
func NewTavilyClient(cfg config.SearchConfig, h config.HTTPConfig) *TavilyClient {
	base := cfg.BaseURL
	if base == "" {
		base = defaultTavilyBase
	}
	return &TavilyClient{
		Client:     util.NewHTTPClient(cfg.Timeout, h.HTTPProxy, h.HTTPSProxy, h.NoProxy),
		APIKey:     cfg.APIKey,
		BaseURL:    strings.TrimSuffix(base, "/"),
		MaxRetries: cfg.MaxRetries,
		Limiter:    worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}
}

type tavilyRequest struct {
	Query          string   `json:"query"`
	SearchDepth    Depth    `json:"search_depth,omitempty"`
	MaxResults     int      `json:"max_results,omitempty"`
	IncludeDomains []string `json:"include_domains,omitempty"`
}

// Search runs one query against the Tavily API
func (c *TavilyClient) Search(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("empty search query")
	}

	endpoint := c.BaseURL + "/search"
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx, endpoint); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(tavilyRequest{
		Query:          req.Query,
		SearchDepth:    req.Depth,
		MaxResults:     req.MaxResults,
		IncludeDomains: req.IncludeDomains,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, httpReq, c.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("Tavily API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("Tavily API returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("parsing Tavily response: %w", err)
	}
	return &out, nil
}
