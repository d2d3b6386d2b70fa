// Package fetch retrieves candidate pages with a single lightweight GET.
// Failures of any kind yield an empty Page rather than an error: a page
// we cannot read is simply a page with no metadata to classify against.
package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxBodyBytes caps how much of a page body is read.
const maxBodyBytes = 512 * 1024

const userAgent = "Mozilla/5.0 (compatible; EvidenceBot/1.0)"

// Page is the lightly extracted content of one candidate URL.
type Page struct {
	HTML     string
	Title    string
	SiteName string
}

// Fetcher retrieves pages for classification.
type Fetcher interface {
	Light(ctx context.Context, url string) Page
}

// HTTPFetcher implements Fetcher over net/http with redirect-following
// and a fixed 15s timeout.
type HTTPFetcher struct {
	client *http.Client
}

// New creates an HTTPFetcher with sensible defaults.
func New() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// Light fetches a URL and extracts the title and og:site_name. The body
// is treated as text regardless of content type. Network errors,
// timeouts, and bad statuses all return a zero Page.
func (f *HTTPFetcher) Light(ctx context.Context, url string) Page {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		zap.L().Debug("fetch: request failed", zap.String("url", url), zap.Error(err))
		return Page{}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		zap.L().Debug("fetch: read body failed", zap.String("url", url), zap.Error(err))
		return Page{}
	}

	html := string(body)
	return Page{
		HTML:     html,
		Title:    extractTitle(html),
		SiteName: extractSiteName(html),
	}
}

var (
	titleRe    = regexp.MustCompile(`(?is)<title[^>]*>([^<]+)</title>`)
	siteNameRe = regexp.MustCompile(`(?is)property=["']og:site_name["']\s+content=["']([^"']+)`)
)

func extractTitle(html string) string {
	m := titleRe.FindStringSubmatch(html)
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func extractSiteName(html string) string {
	m := siteNameRe.FindStringSubmatch(html)
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}
