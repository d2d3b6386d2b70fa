// Package model defines the core data types shared across the evidence pipeline.
package model

import "time"

// Target is a lead awaiting evidence, read from the store's pending view.
// URL and PublishedAt carry prior values and are not consulted by the
// pipeline; the descriptive fields drive query construction.
type Target struct {
	LeadID      string     `json:"lead_id" db:"lead_id"`
	EvidenceID  string     `json:"evidence_id" db:"evidence_id"`
	URL         string     `json:"url,omitempty" db:"url"`
	PublishedAt *time.Time `json:"published_at,omitempty" db:"published_at"`
	LeadName    string     `json:"lead_name,omitempty" db:"lead_name"`
	LeadFirm    string     `json:"lead_firm,omitempty" db:"lead_firm"`
	LeadCity    string     `json:"lead_city,omitempty" db:"lead_city"`
}

// SourceType classifies a discovered URL into one of five evidence categories.
type SourceType string

const (
	SourceTypeWebsite SourceType = "website"
	SourceTypePress   SourceType = "press"
	SourceTypeProject SourceType = "project"
	SourceTypeImages  SourceType = "images"
	SourceTypeArticle SourceType = "article"
)

// AllSourceTypes returns every valid source type.
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceTypeWebsite,
		SourceTypePress,
		SourceTypeProject,
		SourceTypeImages,
		SourceTypeArticle,
	}
}

// Valid reports whether t is one of the closed set of source types.
func (t SourceType) Valid() bool {
	switch t {
	case SourceTypeWebsite, SourceTypePress, SourceTypeProject, SourceTypeImages, SourceTypeArticle:
		return true
	}
	return false
}

// EvidenceRow is one persisted (lead, evidence slot, source URL)
// classification record. At most three rows are written per
// (LeadID, EvidenceID) pair; the upsert key is (LeadID, EvidenceID, URL).
type EvidenceRow struct {
	LeadID      string     `json:"lead_id" db:"lead_id"`
	EvidenceID  string     `json:"evidence_id" db:"evidence_id"`
	URL         string     `json:"url" db:"url"`
	SourceType  SourceType `json:"source_type" db:"source_type"`
	Label       string     `json:"label" db:"label"`
	PublishedAt *time.Time `json:"published_at,omitempty" db:"published_at"`
	Notes       string     `json:"notes" db:"notes"`
}

// RunSummary holds the aggregate outcome of one batch evidence run.
type RunSummary struct {
	Inserted int           `json:"inserted"`
	Failed   int           `json:"failed"`
	Elapsed  time.Duration `json:"elapsed"`
}
