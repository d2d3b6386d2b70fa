package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild_FullLead(t *testing.T) {
	got := Build("Jane Doe", "Doe Advisors", "Chicago")

	assert.Equal(t, []string{
		`"Jane Doe" "Doe Advisors" art advisory`,
		`"Jane Doe" "Doe Advisors" site:.org`,
		`"Jane Doe" "Doe Advisors" museum profile`,
		`"Jane Doe" "Doe Advisors" interview`,
		`"Jane Doe" "Doe Advisors" collection`,
		`Jane Doe (museum OR collection OR foundation OR gallery OR exhibition)`,
		`"Jane Doe" "Doe Advisors" Chicago`,
	}, got)
}

func TestBuild_NoCity(t *testing.T) {
	got := Build("Jane Doe", "Doe Advisors", "")
	assert.Len(t, got, 6)
	for _, q := range got {
		assert.NotContains(t, q, "Chicago")
	}
}

func TestBuild_NameOnly(t *testing.T) {
	got := Build("Jane Doe", "", "")
	assert.Contains(t, got, `"Jane Doe" art advisory`)
	for _, q := range got {
		assert.NotEmpty(t, q)
	}
}

func TestBuild_EmptyLeadStillProducesQueries(t *testing.T) {
	got := Build("", "", "")
	// Suffix-only templates survive; none are empty.
	assert.NotEmpty(t, got)
	for _, q := range got {
		assert.NotEmpty(t, q)
	}
}

func TestBuild_Dedup(t *testing.T) {
	got := Build("", "", "")
	seen := map[string]bool{}
	for _, q := range got {
		assert.False(t, seen[q], "duplicate query %q", q)
		seen[q] = true
	}
}

func TestBuild_CollapsesWhitespace(t *testing.T) {
	got := Build("  Jane   Doe ", "", "")
	assert.Contains(t, got, `"Jane Doe" art advisory`)
	for _, q := range got {
		assert.NotContains(t, q, "  ")
	}
}
