// Package urlnorm canonicalizes candidate URLs and filters out hosts that
// can never become evidence (social networks, directories, review sites).
package urlnorm

import (
	"net/url"
	"strings"
)

// trackingParams are query parameters stripped during canonicalization.
var trackingParams = []string{
	"utm_source",
	"utm_medium",
	"utm_campaign",
	"utm_term",
	"utm_content",
	"fbclid",
	"gclid",
}

// defaultExcludePrefixes disqualify any canonical URL that starts with them.
var defaultExcludePrefixes = []string{
	"https://www.artadvisors.org/art-advisor-directory",
}

// defaultBannedHosts disqualify by hostname regardless of path.
var defaultBannedHosts = map[string]bool{
	"artadvisors.org": true,
	"aboutus.com":     true,
	"allbiz.com":      true,
	"trustpilot.com":  true,
	"mapquest.com":    true,
	"facebook.com":    true,
	"twitter.com":     true,
	"x.com":           true,
	"linkedin.com":    true,
	"instagram.com":   true,
}

// Normalizer canonicalizes URLs and applies the hard-exclusion policy.
// The zero value is not usable; construct with New.
type Normalizer struct {
	excludePrefixes []string
	bannedHosts     map[string]bool
}

// New returns a Normalizer backed by the built-in exclusion lists.
func New() *Normalizer {
	return &Normalizer{
		excludePrefixes: defaultExcludePrefixes,
		bannedHosts:     defaultBannedHosts,
	}
}

// Canonicalize normalizes a URL for dedup and exclusion checks: forces
// https, drops the fragment, and strips known tracking parameters. On
// parse failure the input is returned unchanged. Idempotent.
func Canonicalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	q := u.Query()
	for _, p := range trackingParams {
		q.Del(p)
	}

	u.Scheme = "https"
	u.Fragment = ""
	u.RawQuery = q.Encode()
	return u.String()
}

// IsHardExcluded reports whether a URL is permanently disqualified from
// becoming evidence. Pure function of the canonical form; never does I/O.
func (n *Normalizer) IsHardExcluded(raw string) bool {
	c := Canonicalize(raw)
	for _, prefix := range n.excludePrefixes {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}

	u, err := url.Parse(c)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	return n.bannedHosts[host]
}

// Domain extracts the registrable domain from a URL, best effort: the
// lowercased hostname minus a leading "www.". Returns "" when the URL
// has no parseable host.
func Domain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
