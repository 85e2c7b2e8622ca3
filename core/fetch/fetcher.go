// Package fetch implements the Fetcher interface.
// Sources with an http or https scheme are fetched over HTTP; anything
// else is read as a local file path.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gaurav-prasanna/chatmd/core"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "chatmd/1.0 (https://github.com/gaurav-prasanna/chatmd)"
)

// ErrUnsupportedSource is returned for URL schemes other than http(s) and file.
var ErrUnsupportedSource = errors.New("unsupported source")

// SourceFetcher loads HTML documents from URLs or files.
type SourceFetcher struct {
	client *http.Client
}

// New creates a SourceFetcher with a sensible timeout.
func New() *SourceFetcher {
	return &SourceFetcher{
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// IsURL reports whether source is fetched over HTTP.
func IsURL(source string) bool {
	parsed, err := url.Parse(source)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

// Fetch retrieves the HTML content of source.
func (f *SourceFetcher) Fetch(ctx context.Context, source string) (*core.FetchResult, error) {
	if IsURL(source) {
		return f.fetchURL(ctx, source)
	}

	// Single-letter schemes are Windows drive letters.
	path := source
	if parsed, err := url.Parse(source); err == nil && parsed.Scheme != "" && len(parsed.Scheme) > 1 {
		if parsed.Scheme != "file" {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, source)
		}
		path = parsed.Path
	}
	return readFile(path)
}

func (f *SourceFetcher) fetchURL(ctx context.Context, source string) (*core.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, source)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &core.FetchResult{
		Source:     source,
		StatusCode: resp.StatusCode,
		HTML:       string(body),
	}, nil
}

func readFile(path string) (*core.FetchResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &core.FetchResult{
		Source: path,
		HTML:   string(data),
	}, nil
}
