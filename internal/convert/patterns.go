package convert

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// targetChar is one character of a link target: letters, digits, space and
// the ASCII run '#' through '_' minus the parentheses, which only appear
// as balanced pairs (see linkRe).
const targetChar = `[A-Za-z0-9 \x23-\x27\x2A-\x5F]`

// linkRe matches inline links and images.
//
// Groups: 1 description, 2 target, 3 quoted title, 4 trailing attribute block.
// Parentheses in a target must be balanced, and the title and attribute groups
// stop at the first closing quote/brace, so two constructs on the same line
// never collapse into one match.
var linkRe = regexp.MustCompile(
	`(?i)!?\[([^\]]*)\]\(((?:https?://)?(?:` + targetChar + `|\(` + targetChar + `*\))+)(?:"([^"\n]*)")?\)(\{:[^}\n]*\})?`,
)

// calloutHeaderRe matches the first line of a callout: "> [!type] optional title".
// Groups: 1 type keyword, 2 title remainder.
var calloutHeaderRe = regexp.MustCompile(`(?im)^>+ *\[!([^\]\n]*)\](.*)$`)

// wikilinkRe matches an aliased Obsidian wikilink "[[target|alias]]".
// Groups: 1 target, 2 alias. The target is greedy, so only the text after
// the last "|" is the alias.
var wikilinkRe = regexp.MustCompile(`\[\[([^\]\[]+)\|([^\]\[]+)\]\]`)

// firstWikilinkTarget returns the target of the first aliased wikilink on
// line. Candidates followed anywhere later on the line by a colon are
// skipped, which keeps URLs and namespaced links out.
func firstWikilinkTarget(line string) (string, bool) {
	for _, m := range wikilinkRe.FindAllStringSubmatchIndex(line, -1) {
		if strings.Contains(line[m[0]+3:], ":") {
			continue
		}
		return line[m[2]:m[3]], true
	}
	return "", false
}

const commentOpener = "<!--"

// isCalloutBodyLine reports whether a line following the first body line still
// belongs to the callout: short lines (1-3 chars) always do, longer ones unless
// they open an HTML comment. Empty lines end the body.
func isCalloutBodyLine(line string) bool {
	n := utf8.RuneCountInString(line)
	switch {
	case n == 0:
		return false
	case n <= 3:
		return true
	default:
		return !strings.HasPrefix(line, commentOpener)
	}
}

// isAttributeBlock reports whether line is a standalone Kramdown attribute list.
func isAttributeBlock(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, "{:") && strings.HasSuffix(line, "}")
}

// lineEnd returns the offset of the '\n' terminating the line starting at
// from, or len(s) when the line is the last one.
func lineEnd(s string, from int) int {
	if i := strings.IndexByte(s[from:], '\n'); i >= 0 {
		return from + i
	}
	return len(s)
}
