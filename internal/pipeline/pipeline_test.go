package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/evidence-cli/internal/fetch"
	"github.com/sells-group/evidence-cli/internal/model"
	"github.com/sells-group/evidence-cli/internal/urlnorm"
	"github.com/sells-group/evidence-cli/pkg/serper"
)

func newTestPipeline(search serper.Client, fetcher fetch.Fetcher, st *memStore) *Pipeline {
	return New(search, fetcher, st, urlnorm.New(), 0)
}

func TestProcessTarget_SingleOfficialSite(t *testing.T) {
	search := &stubSearch{def: []serper.SearchResult{
		{Title: "Jane Doe — Official Site", Link: "http://example.org/about?utm_source=x"},
	}}
	fetcher := &stubFetcher{}
	st := newMemStore()

	p := newTestPipeline(search, fetcher, st)
	n, err := p.ProcessTarget(context.Background(), model.Target{
		LeadID: "L1", EvidenceID: "E1", LeadName: "Jane Doe", LeadFirm: "Doe Advisors",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, st.upserts, 1)
	require.Len(t, st.upserts[0], 1)
	row := st.upserts[0][0]
	assert.Equal(t, "L1", row.LeadID)
	assert.Equal(t, "E1", row.EvidenceID)
	assert.Equal(t, "https://example.org/about", row.URL)
	assert.Equal(t, model.SourceTypeWebsite, row.SourceType)
	assert.Equal(t, "Official site", row.Label)
	assert.Nil(t, row.PublishedAt)
}

func TestProcessTarget_CapsAtThreeRows(t *testing.T) {
	var results []serper.SearchResult
	for i := 0; i < 10; i++ {
		results = append(results, serper.SearchResult{
			Title: fmt.Sprintf("Hit %d", i),
			Link:  fmt.Sprintf("https://site%d.com/post", i),
		})
	}
	search := &stubSearch{def: results}
	st := newMemStore()

	p := newTestPipeline(search, &stubFetcher{}, st)
	n, err := p.ProcessTarget(context.Background(), model.Target{
		LeadID: "L1", EvidenceID: "E1", LeadName: "Jane Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, st.upserts, 1)
	assert.Len(t, st.upserts[0], 3)

	// Early stop: the first query already yields three rows, so no
	// further queries are issued.
	assert.Len(t, search.calls, 1)
}

func TestProcessTarget_DedupAcrossQueries(t *testing.T) {
	search := &stubSearch{def: []serper.SearchResult{
		{Title: "Same", Link: "https://janedoe.com/press/award"},
		{Title: "Same tracking variant", Link: "http://janedoe.com/press/award?utm_medium=social"},
	}}
	st := newMemStore()

	p := newTestPipeline(search, &stubFetcher{}, st)
	n, err := p.ProcessTarget(context.Background(), model.Target{
		LeadID: "L1", EvidenceID: "E1", LeadName: "Jane Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	urls := map[string]bool{}
	for _, row := range st.upserts[0] {
		assert.False(t, urls[row.URL], "duplicate canonical URL %s", row.URL)
		urls[row.URL] = true
	}
}

func TestProcessTarget_SkipsExcludedHosts(t *testing.T) {
	search := &stubSearch{def: []serper.SearchResult{
		{Title: "LinkedIn", Link: "https://www.linkedin.com/in/jane"},
		{Title: "Facebook", Link: "https://facebook.com/jane"},
	}}
	st := newMemStore()

	p := newTestPipeline(search, &stubFetcher{}, st)
	n, err := p.ProcessTarget(context.Background(), model.Target{
		LeadID: "L1", EvidenceID: "E1", LeadName: "Jane Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, st.upserts)
}

func TestProcessTarget_SearchFailureDegradesToEmpty(t *testing.T) {
	search := &stubSearch{err: assert.AnError}
	st := newMemStore()

	p := newTestPipeline(search, &stubFetcher{}, st)
	n, err := p.ProcessTarget(context.Background(), model.Target{
		LeadID: "L1", EvidenceID: "E1", LeadName: "Jane Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	// All queries were still attempted.
	assert.NotEmpty(t, search.calls)
}

func TestProcessTarget_UsesPageMetadataAndDate(t *testing.T) {
	link := "https://randomblog.com/jane-doe-feature"
	search := &stubSearch{def: []serper.SearchResult{{Title: "Feature", Link: link}}}
	fetcher := &stubFetcher{pages: map[string]fetch.Page{
		link: {
			HTML:  `<meta property="article:published_time" content="2024-05-01T10:00:00Z"><title>An Interview with Jane Doe</title>`,
			Title: "An Interview with Jane Doe",
		},
	}}
	st := newMemStore()

	p := newTestPipeline(search, fetcher, st)
	n, err := p.ProcessTarget(context.Background(), model.Target{
		LeadID: "L1", EvidenceID: "E1", LeadName: "Jane Doe",
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	row := st.upserts[0][0]
	assert.Equal(t, model.SourceTypeArticle, row.SourceType)
	assert.Equal(t, "Interview article", row.Label)
	require.NotNil(t, row.PublishedAt)
	assert.Equal(t, 2024, row.PublishedAt.Year())
	assert.Contains(t, row.Notes, "randomblog.com")
}

func TestProcessTarget_PersistenceErrorPropagates(t *testing.T) {
	search := &stubSearch{def: []serper.SearchResult{
		{Title: "Jane", Link: "https://janedoe.com/about"},
	}}
	st := newMemStore()
	st.failLeads["L1"] = true

	p := newTestPipeline(search, &stubFetcher{}, st)
	_, err := p.ProcessTarget(context.Background(), model.Target{
		LeadID: "L1", EvidenceID: "E1", LeadName: "Jane Doe",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "L1")
}
