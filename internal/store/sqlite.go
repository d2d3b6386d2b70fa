package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/evidence-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Intended for
// local development; the production store is Postgres.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sqlDB}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS lead_evidence_targets (
	lead_id      TEXT NOT NULL,
	evidence_id  TEXT NOT NULL,
	url          TEXT,
	published_at DATETIME,
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
	published_at DATETIME,
	notes        TEXT NOT NULL DEFAULT '',
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (lead_id, evidence_id, url)
);

CREATE TABLE IF NOT EXISTS evidence_runs (
	id          TEXT PRIMARY KEY,
	inserted    INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	elapsed_ms  INTEGER NOT NULL,
	finished_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE VIEW IF NOT EXISTS leads_needing_evidence AS
SELECT l.lead_id, l.evidence_id, l.url, l.published_at,
       l.lead_name, l.lead_firm, l.lead_city
FROM lead_evidence_targets l
LEFT JOIN evidence_rows e
  ON e.lead_id = l.lead_id AND e.evidence_id = l.evidence_id
WHERE e.lead_id IS NULL;
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListTargets(ctx context.Context, limit int) ([]model.Target, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT lead_id, evidence_id, url, published_at, lead_name, lead_firm, lead_city
		 FROM leads_needing_evidence LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list targets")
	}
	defer rows.Close()

	var targets []model.Target
	for rows.Next() {
		var (
			leadID, evidenceID    string
			publishedAt           sql.NullTime
			url, name, firm, city sql.NullString
		)
		if err := rows.Scan(&leadID, &evidenceID, &url, &publishedAt, &name, &firm, &city); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan target")
		}
		target := model.Target{
			LeadID:     leadID,
			EvidenceID: evidenceID,
			URL:        url.String,
			LeadName:   name.String,
			LeadFirm:   firm.String,
			LeadCity:   city.String,
		}
		if publishedAt.Valid {
			pub := publishedAt.Time
			target.PublishedAt = &pub
		}
		targets = append(targets, target)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate targets")
	}
	return targets, nil
}

func (s *SQLiteStore) UpsertEvidence(ctx context.Context, rows []model.EvidenceRow) error {
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
		sb.WriteString(`(?, ?, ?, ?, ?, ?, ?, datetime('now'))`)
		args = append(args, r.LeadID, r.EvidenceID, r.URL, string(r.SourceType), r.Label, nullableTime(r.PublishedAt), r.Notes)
	}
	sb.WriteString(` ON CONFLICT (lead_id, evidence_id, url) DO UPDATE SET
	source_type  = excluded.source_type,
	label        = excluded.label,
	published_at = excluded.published_at,
	notes        = excluded.notes,
	updated_at   = datetime('now')`)

	if _, err := s.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return eris.Wrapf(err, "sqlite: upsert evidence for lead %s", rows[0].LeadID)
	}
	return nil
}

func (s *SQLiteStore) RecordRun(ctx context.Context, summary model.RunSummary) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO evidence_runs (id, inserted, failed, elapsed_ms) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), summary.Inserted, summary.Failed, summary.Elapsed.Milliseconds(),
	)
	return eris.Wrap(err, "sqlite: record run")
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
