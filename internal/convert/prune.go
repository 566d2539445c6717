package convert

import (
	"path/filepath"
	"strings"
)

// Index pruning defaults.
var (
	DefaultIndexName         = "Main Index"
	DefaultExcludedSections  = []string{"Read & Watch List", "Languages"}
	DefaultExcludedWikilinks = []string{"read-and-watch-list"}
)

// IsIndex reports whether path names the designated index document.
func (e *Engine) IsIndex(path string) bool {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) == e.indexName
}

// PruneIndex drops every line whose first link or image describes an
// excluded section, or whose first aliased wikilink targets an excluded
// note. Kept lines retain their original terminators.
func (e *Engine) PruneIndex(content string) (string, int) {
	var b strings.Builder
	b.Grow(len(content))

	pruned := 0
	for _, line := range strings.SplitAfter(content, "\n") {
		if line == "" {
			continue
		}
		text := strings.TrimRight(line, "\r\n")
		if e.excludedLine(text) {
			pruned++
			continue
		}
		b.WriteString(line)
	}
	return b.String(), pruned
}

func (e *Engine) excludedLine(text string) bool {
	if m := linkRe.FindStringSubmatch(text); m != nil {
		if _, drop := e.excluded[m[1]]; drop {
			return true
		}
	}
	if target, ok := firstWikilinkTarget(text); ok {
		if _, drop := e.excludedWikilinks[target]; drop {
			return true
		}
	}
	return false
}
