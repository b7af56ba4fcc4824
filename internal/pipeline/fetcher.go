package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/document"
)

const (
	DefaultUserAgent    = "resume-verifier/1.0"
	DefaultFetchTimeout = 30 * time.Second
	DefaultMaxBytes     = 10 * 1024 * 1024
)

// ErrTooLarge is returned when a remote document exceeds the size limit
var ErrTooLarge = errors.New("document too large")

// contentTypeExt maps document media types to the extension the parser expects
var contentTypeExt = map[string]string{
	"application/pdf":    "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"text/html":     "html",
	"text/plain":    "txt",
	"text/markdown": "md",
}

// Fetcher downloads resumes published at a URL
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// NewFetcher creates a new Fetcher. A nil client gets one with the given timeout.
func NewFetcher(client *http.Client, timeout time.Duration, userAgent string, maxBytes int64) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	c := *client
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return fmt.Errorf("stopped after 3 redirects")
		}
		return nil
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Fetcher{httpClient: &c, userAgent: userAgent, maxBytes: maxBytes}
}

// FetchResult is a downloaded document
type FetchResult struct {
	Data        []byte
	Filename    string
	ContentType string
	FinalURL    string
}

// IsURL reports whether source names an http(s) document rather than a local path
func IsURL(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch downloads the document at rawURL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/pdf,application/vnd.openxmlformats-officedocument.wordprocessingml.document,text/html;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	// Read one byte past the limit to detect oversized bodies
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, f.maxBytes)
	}

	finalURL := resp.Request.URL.String()
	contentType := resp.Header.Get("Content-Type")
	return &FetchResult{
		Data:        body,
		Filename:    filenameFor(resp.Request.URL, contentType),
		ContentType: contentType,
		FinalURL:    finalURL,
	}, nil
}

// filenameFor takes the last path segment of u, falling back to the media
// type when the segment has no extension the parser accepts
func filenameFor(u *url.URL, contentType string) string {
	name := path.Base(strings.TrimSuffix(u.Path, "/"))
	if name == "." || name == "/" || name == "" {
		name = u.Hostname()
	}
	if document.Supported(name) {
		return name
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return name
	}
	if ext, ok := contentTypeExt[mediaType]; ok {
		return strings.TrimSuffix(name, path.Ext(name)) + "." + ext
	}
	return name
}
