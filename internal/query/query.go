// Package query builds the search queries issued for one lead.
package query

import (
	"fmt"
	"strings"
)

// Build produces the ordered, deduplicated set of search queries for a
// lead. Missing name/firm/city degrade to shorter queries rather than
// failing; empty strings after normalization are dropped.
func Build(name, firm, city string) []string {
	name = strings.TrimSpace(name)
	firm = strings.TrimSpace(firm)
	city = strings.TrimSpace(city)

	var parts []string
	if name != "" {
		parts = append(parts, fmt.Sprintf("%q", name))
	}
	if firm != "" {
		parts = append(parts, fmt.Sprintf("%q", firm))
	}
	subject := strings.Join(parts, " ")

	candidates := []string{
		subject + " art advisory",
		subject + " site:.org",
		subject + " museum profile",
		subject + " interview",
		subject + " collection",
		name + " (museum OR collection OR foundation OR gallery OR exhibition)",
	}
	if city != "" {
		candidates = append(candidates, subject+" "+city)
	}

	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, q := range candidates {
		q = strings.Join(strings.Fields(q), " ")
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
	}
	return out
}
