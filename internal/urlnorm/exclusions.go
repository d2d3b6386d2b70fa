package urlnorm

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// exclusionFile is the on-disk shape of an exclusion-list override.
type exclusionFile struct {
	Prefixes []string `yaml:"prefixes"`
	Hosts    []string `yaml:"hosts"`
}

// NewFromFile returns a Normalizer whose exclusion lists are extended by
// the YAML file at path. Entries are additive to the built-in lists so an
// override can never re-admit a banned host.
func NewFromFile(path string) (*Normalizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "urlnorm: read exclusions %s", path)
	}

	var f exclusionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "urlnorm: parse exclusions")
	}

	n := New()
	n.excludePrefixes = append(append([]string{}, defaultExcludePrefixes...), f.Prefixes...)

	hosts := make(map[string]bool, len(defaultBannedHosts)+len(f.Hosts))
	for h := range defaultBannedHosts {
		hosts[h] = true
	}
	for _, h := range f.Hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			hosts[h] = true
		}
	}
	n.bannedHosts = hosts

	return n, nil
}
