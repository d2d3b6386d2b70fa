// Package store persists evidence rows and exposes the pending-leads view.
package store

import (
	"context"

	"github.com/sells-group/evidence-cli/internal/model"
)

// Store defines the persistence interface for the evidence pipeline.
type Store interface {
	// ListTargets reads up to limit leads still needing evidence.
	ListTargets(ctx context.Context, limit int) ([]model.Target, error)

	// UpsertEvidence writes a batch of evidence rows. The conflict key is
	// (lead_id, evidence_id, url); an existing row with the same key is
	// replaced. Empty input is a no-op.
	UpsertEvidence(ctx context.Context, rows []model.EvidenceRow) error

	// RecordRun stores the aggregate summary of one batch run.
	RecordRun(ctx context.Context, summary model.RunSummary) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
