package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/evidence-cli/internal/db"
	"github.com/sells-group/evidence-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool (used by tests via pgxmock).
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS lead_evidence_targets (
	lead_id      TEXT NOT NULL,
	evidence_id  TEXT NOT NULL,
	url          TEXT,
	published_at TIMESTAMPTZ,
	lead_name    TEXT,
	lead_firm    TEXT,
	lead_city    TEXT,
	PRIMARY KEY (lead_id, evidence_id)
);

CREATE TABLE IF NOT EXISTS evidence_rows (
	lead_id      TEXT NOT NULL,
	evidence_id  TEXT NOT NULL,
	url          TEXT NOT NULL,
	source_type  TEXT NOT NULL,
	label        TEXT NOT NULL,
	published_at TIMESTAMPTZ,
	notes        TEXT NOT NULL DEFAULT '',
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (lead_id, evidence_id, url)
);

CREATE INDEX IF NOT EXISTS idx_evidence_rows_lead ON evidence_rows(lead_id, evidence_id);

CREATE TABLE IF NOT EXISTS evidence_runs (
	id          TEXT PRIMARY KEY,
	inserted    INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	elapsed_ms  BIGINT NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE OR REPLACE VIEW leads_needing_evidence AS
SELECT l.lead_id, l.evidence_id, l.url, l.published_at,
       l.lead_name, l.lead_firm, l.lead_city
FROM lead_evidence_targets l
LEFT JOIN evidence_rows e
  ON e.lead_id = l.lead_id AND e.evidence_id = l.evidence_id
WHERE e.lead_id IS NULL;
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

const listTargetsSQL = `
SELECT lead_id, evidence_id, url, published_at, lead_name, lead_firm, lead_city
FROM leads_needing_evidence
LIMIT $1`

func (s *PostgresStore) ListTargets(ctx context.Context, limit int) ([]model.Target, error) {
	rows, err := s.pool.Query(ctx, listTargetsSQL, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list targets")
	}
	defer rows.Close()

	var targets []model.Target
	for rows.Next() {
		var (
			t           model.Target
			url         *string
			name, firm  *string
			city        *string
			publishedAt *time.Time
		)
		if err := rows.Scan(&t.LeadID, &t.EvidenceID, &url, &publishedAt, &name, &firm, &city); err != nil {
			return nil, eris.Wrap(err, "postgres: scan target")
		}
		if url != nil {
			t.URL = *url
		}
		t.PublishedAt = publishedAt
		if name != nil {
			t.LeadName = *name
		}
		if firm != nil {
			t.LeadFirm = *firm
		}
		if city != nil {
			t.LeadCity = *city
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate targets")
	}
	return targets, nil
}

// UpsertEvidence writes the whole batch in one multi-row INSERT so the
// per-lead write is atomic without an explicit transaction.
func (s *PostgresStore) UpsertEvidence(ctx context.Context, rows []model.EvidenceRow) error {
	if len(rows) == 0 {
		return nil
	}

	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`INSERT INTO evidence_rows (lead_id, evidence_id, url, source_type, label, published_at, notes, updated_at) VALUES `)
	for i, r := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 7
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, now())",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		args = append(args, r.LeadID, r.EvidenceID, r.URL, string(r.SourceType), r.Label, r.PublishedAt, r.Notes)
	}
	sb.WriteString(` ON CONFLICT (lead_id, evidence_id, url) DO UPDATE SET
	source_type  = EXCLUDED.source_type,
	label        = EXCLUDED.label,
	published_at = EXCLUDED.published_at,
	notes        = EXCLUDED.notes,
	updated_at   = now()`)

	if _, err := s.pool.Exec(ctx, sb.String(), args...); err != nil {
		return eris.Wrapf(err, "postgres: upsert evidence for lead %s", rows[0].LeadID)
	}
	return nil
}

func (s *PostgresStore) RecordRun(ctx context.Context, summary model.RunSummary) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO evidence_runs (id, inserted, failed, elapsed_ms) VALUES ($1, $2, $3, $4)`,
		uuid.New().String(), summary.Inserted, summary.Failed, summary.Elapsed.Milliseconds(),
	)
	return eris.Wrap(err, "postgres: record run")
}
