// Package pipeline orchestrates evidence discovery for leads: search,
// normalize, fetch, classify, and persist up to three evidence rows per
// lead/evidence pair.
package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/evidence-cli/internal/classify"
	"github.com/sells-group/evidence-cli/internal/dates"
	"github.com/sells-group/evidence-cli/internal/fetch"
	"github.com/sells-group/evidence-cli/internal/model"
	"github.com/sells-group/evidence-cli/internal/query"
	"github.com/sells-group/evidence-cli/internal/store"
	"github.com/sells-group/evidence-cli/internal/urlnorm"
	"github.com/sells-group/evidence-cli/pkg/serper"
)

// maxRowsPerTarget caps how many evidence rows one lead/evidence pair
// may accumulate.
const maxRowsPerTarget = 3

// Pipeline runs evidence discovery for individual leads.
type Pipeline struct {
	search  serper.Client
	fetcher fetch.Fetcher
	store   store.Store
	norm    *urlnorm.Normalizer
	limiter *rate.Limiter
}

// New creates a Pipeline. rateLimit bounds Serper requests per second
// across all concurrent leads; zero or negative disables pacing.
func New(search serper.Client, fetcher fetch.Fetcher, st store.Store, norm *urlnorm.Normalizer, rateLimit float64) *Pipeline {
	var limiter *rate.Limiter
	if rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(rateLimit), 1)
	}
	return &Pipeline{
		search:  search,
		fetcher: fetcher,
		store:   st,
		norm:    norm,
		limiter: limiter,
	}
}

// ProcessTarget discovers, classifies, and persists evidence for one
// lead. Candidate-level failures (fetch errors, unclassifiable URLs) are
// skipped silently; search provider failures degrade that query to empty
// results. Returns the number of rows written; only the persistence
// write can return an error.
func (p *Pipeline) ProcessTarget(ctx context.Context, t model.Target) (int, error) {
	log := zap.L().With(zap.String("lead_id", t.LeadID), zap.String("evidence_id", t.EvidenceID))

	queries := query.Build(t.LeadName, t.LeadFirm, t.LeadCity)

	seen := make(map[string]bool)
	assembled := make([]model.EvidenceRow, 0, maxRowsPerTarget)

	for _, q := range queries {
		if len(assembled) >= maxRowsPerTarget {
			break
		}

		results := p.searchQuery(ctx, q, log)
		for _, r := range results {
			if len(assembled) >= maxRowsPerTarget {
				break
			}

			url := urlnorm.Canonicalize(r.Link)
			if seen[url] {
				continue
			}
			seen[url] = true

			if p.norm.IsHardExcluded(url) {
				continue
			}

			domain := urlnorm.Domain(url)
			if domain == "" {
				continue
			}

			page := p.fetcher.Light(ctx, url)

			kind, ok := classify.Classify(url, page.Title, page.SiteName)
			if !ok {
				continue
			}

			row := model.EvidenceRow{
				LeadID:     t.LeadID,
				EvidenceID: t.EvidenceID,
				URL:        url,
				SourceType: kind,
				Label:      classify.Label(kind, page.Title),
				Notes:      classify.Notes(kind, domain),
			}
			if page.HTML != "" {
				row.PublishedAt = dates.ExtractPublishedAt(page.HTML)
			}

			assembled = append(assembled, row)
		}
	}

	// Defensive cap; the accumulator loop already stops at three.
	if len(assembled) > maxRowsPerTarget {
		assembled = assembled[:maxRowsPerTarget]
	}

	if err := p.store.UpsertEvidence(ctx, assembled); err != nil {
		return 0, eris.Wrapf(err, "pipeline: persist evidence for lead %s", t.LeadID)
	}

	log.Debug("target processed", zap.Int("rows", len(assembled)))
	return len(assembled), nil
}

// searchQuery calls the search provider, absorbing any failure into an
// empty result set so one bad query never aborts the lead.
func (p *Pipeline) searchQuery(ctx context.Context, q string, log *zap.Logger) []serper.SearchResult {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			log.Warn("search rate limit wait aborted", zap.Error(err))
			return nil
		}
	}

	results, err := p.search.Search(ctx, q)
	if err != nil {
		log.Warn("search failed", zap.String("query", q), zap.Error(err))
		return nil
	}
	return results
}
