package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLight_ExtractsTitleAndSiteName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head>
			<title> Jane Doe Advisory </title>
			<meta property="og:site_name" content="Doe Advisors">
		</head><body>hi</body></html>`))
	}))
	defer srv.Close()

	page := New().Light(context.Background(), srv.URL)
	assert.Equal(t, "Jane Doe Advisory", page.Title)
	assert.Equal(t, "Doe Advisors", page.SiteName)
	assert.Contains(t, page.HTML, "<body>hi</body>")
}

func TestLight_SendsBotUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	New().Light(context.Background(), srv.URL)
	assert.Equal(t, "Mozilla/5.0 (compatible; EvidenceBot/1.0)", gotUA)
}

func TestLight_FollowsRedirects(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<title>Landed</title>`))
	}))
	defer final.Close()

	redirecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusFound)
	}))
	defer redirecting.Close()

	page := New().Light(context.Background(), redirecting.URL)
	assert.Equal(t, "Landed", page.Title)
}

func TestLight_NetworkErrorReturnsEmptyPage(t *testing.T) {
	page := New().Light(context.Background(), "http://127.0.0.1:1/nope")
	assert.Equal(t, Page{}, page)
}

func TestLight_InvalidURLReturnsEmptyPage(t *testing.T) {
	page := New().Light(context.Background(), "http://%zz/bad")
	assert.Equal(t, Page{}, page)
}

func TestLight_MissingMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>plain</body></html>`))
	}))
	defer srv.Close()

	page := New().Light(context.Background(), srv.URL)
	assert.Empty(t, page.Title)
	assert.Empty(t, page.SiteName)
	assert.NotEmpty(t, page.HTML)
}
