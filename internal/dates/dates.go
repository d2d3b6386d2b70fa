// Package dates extracts a best-effort publication timestamp from raw HTML.
package dates

import (
	"regexp"
	"strings"
	"time"
)

var (
	publishedMetaRe = regexp.MustCompile(`(?is)<meta[^>]+property=["']article:published_time["'][^>]*>`)
	pubdateMetaRe   = regexp.MustCompile(`(?is)<meta[^>]+name=["']pubdate["'][^>]*>`)
	dateMetaRe      = regexp.MustCompile(`(?is)<meta[^>]+name=["']date["'][^>]*>`)
	contentAttrRe   = regexp.MustCompile(`(?is)content=["']([^"']+)["']`)
	timeElementRe   = regexp.MustCompile(`(?is)<time[^>]+datetime=["']([^"']+)["']`)

	// isoPrefixRe gates meta/time candidates: accept only YYYY-MM-DD...
	isoPrefixRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

	// textDateRe scans visible text for year-month-day with -, /, or .
	// separators, years 1900-2099.
	textDateRe = regexp.MustCompile(`\b(20\d{2}|19\d{2})[-/.](0?[1-9]|1[0-2])[-/.](0?[1-9]|[12]\d|3[01])\b`)

	tagRe = regexp.MustCompile(`(?s)<[^>]*>`)
)

// ExtractPublishedAt parses HTML for a publication timestamp, trying
// meta tags, <time datetime>, then a visible-text date scan. Returns
// nil when nothing parseable is found; malformed input never panics
// or errors.
func ExtractPublishedAt(html string) *time.Time {
	for _, metaRe := range []*regexp.Regexp{publishedMetaRe, pubdateMetaRe, dateMetaRe} {
		tag := metaRe.FindString(html)
		if tag == "" {
			continue
		}
		m := contentAttrRe.FindStringSubmatch(tag)
		if len(m) < 2 {
			continue
		}
		if t := parseCandidate(m[1]); t != nil {
			return t
		}
	}

	if m := timeElementRe.FindStringSubmatch(html); len(m) >= 2 {
		if t := parseCandidate(m[1]); t != nil {
			return t
		}
	}

	// Fallback: first date-like substring in the visible text.
	text := tagRe.ReplaceAllString(html, " ")
	if m := textDateRe.FindString(text); m != "" {
		if t := parseLoose(m); t != nil {
			return t
		}
	}

	return nil
}

// parseCandidate accepts an ISO-date-like value and normalizes it to UTC.
func parseCandidate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if !isoPrefixRe.MatchString(value) {
		return nil
	}

	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, strings.TrimSuffix(value, "Z")); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}

// parseLoose parses a bare date with -, /, or . separators.
func parseLoose(value string) *time.Time {
	norm := strings.NewReplacer("/", "-", ".", "-").Replace(value)
	parts := strings.Split(norm, "-")
	if len(parts) != 3 {
		return nil
	}
	for i, p := range parts[1:] {
		if len(p) == 1 {
			parts[i+1] = "0" + p
		}
	}
	t, err := time.Parse("2006-01-02", strings.Join(parts, "-"))
	if err != nil {
		return nil
	}
	u := t.UTC()
	return &u
}
