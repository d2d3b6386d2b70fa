// Package serper provides a client for the Serper.dev Google search API.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the Serper search operations.
type Client interface {
	// Search runs one web search and returns the organic results.
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// SearchResult is a single organic search hit.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// searchRequest is the Serper request body. Locale, page size, and
// autocorrect are fixed; only the query varies.
type searchRequest struct {
	Q           string `json:"q"`
	Num         int    `json:"num"`
	GL          string `json:"gl"`
	HL          string `json:"hl"`
	Autocorrect bool   `json:"autocorrect"`
}

// organicEntry tolerates the alternate key names Serper has used for
// links and snippets across API versions.
type organicEntry struct {
	Title              string `json:"title"`
	Link               string `json:"link"`
	URL                string `json:"url"`
	Snippet            string `json:"snippet"`
	SnippetHighlighted string `json:"snippet_highlighted"`
	Description        string `json:"description"`
}

type searchResponse struct {
	Organic []organicEntry `json:"organic"`
}

// Option configures the Serper client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Serper client with a fixed 15s request timeout.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://google.serper.dev/search",
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if c.apiKey == "" {
		return nil, eris.New("serper: api key is not set")
	}

	payload, err := json.Marshal(searchRequest{
		Q:           query,
		Num:         10,
		GL:          "us",
		HL:          "en",
		Autocorrect: true,
	})
	if err != nil {
		return nil, eris.Wrap(err, "serper: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "serper: create request")
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "serper: request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("serper: unexpected status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, eris.Wrap(err, "serper: unmarshal response")
	}

	out := make([]SearchResult, 0, len(result.Organic))
	for _, o := range result.Organic {
		link := o.Link
		if link == "" {
			link = o.URL
		}
		if link == "" {
			continue
		}
		snippet := o.Snippet
		if snippet == "" {
			snippet = o.SnippetHighlighted
		}
		if snippet == "" {
			snippet = o.Description
		}
		out = append(out, SearchResult{
			Title:   o.Title,
			Link:    link,
			Snippet: snippet,
		})
	}
	return out, nil
}
