package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/evidence-cli/internal/model"
)

// Coordinator fans the pipeline out over all pending targets with
// bounded concurrency and per-lead failure isolation.
type Coordinator struct {
	pipeline    *Pipeline
	batchSize   int
	concurrency int
}

// NewCoordinator creates a Coordinator. batchSize caps how many pending
// targets one run loads; concurrency bounds in-flight leads.
func NewCoordinator(p *Pipeline, batchSize, concurrency int) *Coordinator {
	if batchSize <= 0 {
		batchSize = 500
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Coordinator{pipeline: p, batchSize: batchSize, concurrency: concurrency}
}

// Run loads pending targets and processes them all. Failure to load
// targets aborts the run before any lead is touched; per-lead failures
// are logged, counted, and never affect sibling leads.
func (c *Coordinator) Run(ctx context.Context) (model.RunSummary, error) {
	start := time.Now()

	targets, err := c.pipeline.store.ListTargets(ctx, c.batchSize)
	if err != nil {
		return model.RunSummary{}, eris.Wrap(err, "coordinator: list targets")
	}

	zap.L().Info("starting evidence run",
		zap.Int("targets", len(targets)),
		zap.Int("concurrency", c.concurrency),
	)

	var inserted, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, t := range targets {
		g.Go(func() error {
			n, err := c.pipeline.ProcessTarget(gctx, t)
			if err != nil {
				failed.Add(1)
				zap.L().Error("lead processing failed",
					zap.String("lead_id", t.LeadID),
					zap.Error(err),
				)
				return nil // isolate: never abort sibling leads
			}
			inserted.Add(int64(n))
			return nil
		})
	}

	_ = g.Wait() // workers never return errors

	summary := model.RunSummary{
		Inserted: int(inserted.Load()),
		Failed:   int(failed.Load()),
		Elapsed:  time.Since(start),
	}

	if err := c.pipeline.store.RecordRun(ctx, summary); err != nil {
		zap.L().Warn("record run failed", zap.Error(err))
	}

	zap.L().Info("run complete",
		zap.Int("inserts", summary.Inserted),
		zap.Int("failures", summary.Failed),
		zap.Duration("elapsed", summary.Elapsed),
	)

	return summary, nil
}
