package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/evidence-cli/internal/fetch"
	"github.com/sells-group/evidence-cli/internal/model"
	"github.com/sells-group/evidence-cli/pkg/serper"
)

// stubSearch returns canned results per query, falling back to def for
// queries not in the map.
type stubSearch struct {
	mu      sync.Mutex
	results map[string][]serper.SearchResult
	def     []serper.SearchResult
	err     error
	calls   []string
}

func (s *stubSearch) Search(_ context.Context, query string) ([]serper.SearchResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, query)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if r, ok := s.results[query]; ok {
		return r, nil
	}
	return s.def, nil
}

// stubFetcher returns canned pages per URL; unknown URLs get an empty page.
type stubFetcher struct {
	pages map[string]fetch.Page
}

func (f *stubFetcher) Light(_ context.Context, url string) fetch.Page {
	return f.pages[url]
}

// memStore is an in-memory Store that can be told to fail persistence
// for specific leads.
type memStore struct {
	mu        sync.Mutex
	targets   []model.Target
	listErr   error
	upserts   [][]model.EvidenceRow
	failLeads map[string]bool
	runs      []model.RunSummary
}

func newMemStore() *memStore {
	return &memStore{failLeads: map[string]bool{}}
}

func (m *memStore) ListTargets(_ context.Context, limit int) ([]model.Target, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if len(m.targets) > limit {
		return m.targets[:limit], nil
	}
	return m.targets, nil
}

func (m *memStore) UpsertEvidence(_ context.Context, rows []model.EvidenceRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(rows) > 0 && m.failLeads[rows[0].LeadID] {
		return eris.Errorf("memstore: forced failure for lead %s", rows[0].LeadID)
	}
	if len(rows) > 0 {
		m.upserts = append(m.upserts, rows)
	}
	return nil
}

func (m *memStore) RecordRun(_ context.Context, s model.RunSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, s)
	return nil
}

func (m *memStore) Migrate(context.Context) error { return nil }
func (m *memStore) Close() error                  { return nil }
