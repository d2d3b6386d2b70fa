// Package classify assigns a source type to a discovered URL using a
// deterministic, ordered rule cascade over the domain, path, and page
// metadata. No I/O and no learned models; the policy is a data-driven
// list of (predicate, result) pairs evaluated in priority order.
package classify

import (
	"regexp"
	"strings"

	"github.com/sells-group/evidence-cli/internal/model"
	"github.com/sells-group/evidence-cli/internal/urlnorm"
)

var (
	institutionalDomainRe = regexp.MustCompile(`museum|gallery|foundation|university|collection`)
	institutionalPathRe   = regexp.MustCompile(`exhibition|project|artist|profile`)
	mastheadDomainRe      = regexp.MustCompile(`nytimes|wsj|artnews|artforum|ft\.com|newyorker|theguardian|bloomberg|forbes`)
	pressPathRe           = regexp.MustCompile(`press|newsroom|press-release|media`)
	imagesPathRe          = regexp.MustCompile(`image|photo|media|collection/images`)
	websitePathRe         = regexp.MustCompile(`about|team|people|advis`)
	officialTextRe        = regexp.MustCompile(`(?i)official|homepage`)
	nonprofitDomainRe     = regexp.MustCompile(`\.org$|\.edu$`)
	interviewTitleRe      = regexp.MustCompile(`(?i)interview|q&a|conversation`)
)

// rule is one step of the classification cascade.
type rule struct {
	name  string
	kind  model.SourceType
	match func(domain, path, text string) bool
}

// rules are evaluated in order; the first match wins. High-confidence
// combined signals (institutional domain + content path) come before
// generic TLD fallbacks so institutional interview or press pages are
// not misfiled as plain articles. The final catch-all makes "article"
// the default for any URL with a resolvable domain.
var rules = []rule{
	{
		name: "institutional_project",
		kind: model.SourceTypeProject,
		match: func(domain, path, _ string) bool {
			return institutionalDomainRe.MatchString(domain) && institutionalPathRe.MatchString(path)
		},
	},
	{
		name: "editorial_masthead",
		kind: model.SourceTypeArticle,
		match: func(domain, _, _ string) bool {
			return mastheadDomainRe.MatchString(domain)
		},
	},
	{
		name: "press_path",
		kind: model.SourceTypePress,
		match: func(_, path, _ string) bool {
			return pressPathRe.MatchString(path)
		},
	},
	{
		name: "images_path",
		kind: model.SourceTypeImages,
		match: func(_, path, _ string) bool {
			return imagesPathRe.MatchString(path)
		},
	},
	{
		name: "official_site",
		kind: model.SourceTypeWebsite,
		match: func(_, path, text string) bool {
			return websitePathRe.MatchString(path) || officialTextRe.MatchString(text)
		},
	},
	{
		name: "nonprofit_tld",
		kind: model.SourceTypeProject,
		match: func(domain, _, _ string) bool {
			return nonprofitDomainRe.MatchString(domain)
		},
	},
	{
		name: "default_article",
		kind: model.SourceTypeArticle,
		match: func(_, _, _ string) bool {
			return true
		},
	},
}

// Classify maps a URL plus optional page metadata to a source type.
// Returns false only when no domain can be extracted from the URL;
// otherwise the catch-all rule guarantees a result.
func Classify(rawURL, title, siteName string) (model.SourceType, bool) {
	domain := urlnorm.Domain(rawURL)
	if domain == "" {
		return "", false
	}
	path := strings.ToLower(rawURL)
	text := title + " " + siteName

	for _, r := range rules {
		if r.match(domain, path, text) {
			return r.kind, true
		}
	}
	return "", false
}

// Label maps a source type to its short human label. Articles are
// further split into interview coverage by title.
func Label(kind model.SourceType, title string) string {
	switch kind {
	case model.SourceTypeWebsite:
		return "Official site"
	case model.SourceTypePress:
		return "Press release"
	case model.SourceTypeProject:
		return "Project page"
	case model.SourceTypeImages:
		return "Image resource"
	case model.SourceTypeArticle:
		if interviewTitleRe.MatchString(title) {
			return "Interview article"
		}
		return "Article"
	}
	return "Article"
}

// maxNotesLen is the hard cap on the notes column.
const maxNotesLen = 140

var notesTemplates = map[model.SourceType]string{
	model.SourceTypeWebsite: "Authoritative profile",
	model.SourceTypePress:   "Institutional press source",
	model.SourceTypeProject: "Official project/exhibition page",
	model.SourceTypeImages:  "Institutional media/images",
	model.SourceTypeArticle: "Credible media coverage",
}

// Notes renders the per-kind rationale string, truncated with an
// ellipsis when the interpolated domain would push it past 140 chars.
func Notes(kind model.SourceType, domain string) string {
	base, ok := notesTemplates[kind]
	if !ok {
		base = notesTemplates[model.SourceTypeArticle]
	}
	msg := base + " (" + domain + ")"
	runes := []rune(msg)
	if len(runes) <= maxNotesLen {
		return msg
	}
	return string(runes[:maxNotesLen-3]) + "..."
}
