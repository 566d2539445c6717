// Package inspect reports the links and Obsidian constructs found in
// documents without modifying them.
package inspect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/starford/kramify/internal/convert"
	"github.com/starford/kramify/internal/frontmatter"
	"github.com/starford/kramify/internal/storage"
)

// LinkKind classifies a link found by the Markdown parser.
type LinkKind string

const (
	LinkKindInline LinkKind = "inline"
	LinkKindImage  LinkKind = "image"
	LinkKindAuto   LinkKind = "auto"
)

// Link is one destination found in a document body.
type Link struct {
	Kind        LinkKind `json:"kind"`
	Destination string   `json:"destination"`
	External    bool     `json:"external"`
}

// Links parses body as CommonMark (with bare URL detection) and returns
// its links in document order.
func Links(body []byte) []Link {
	md := goldmark.New(goldmark.WithExtensions(extension.Linkify))
	root := md.Parser().Parse(text.NewReader(body))

	links := make([]Link, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, newLink(LinkKindAuto, string(node.URL(body))))
		case *gmast.Image:
			links = append(links, newLink(LinkKindImage, string(node.Destination)))
		case *gmast.Link:
			links = append(links, newLink(LinkKindInline, string(node.Destination)))
		}
		return gmast.WalkContinue, nil
	})
	return links
}

func newLink(kind LinkKind, dest string) Link {
	return Link{Kind: kind, Destination: dest, External: IsExternal(dest)}
}

var wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)

// Wikilinks returns the distinct targets of Obsidian wikilinks in body, in
// order of first appearance. Aliases ("[[target|alias]]") are dropped.
// Wikilinks are not converted and usually break under Kramdown.
func Wikilinks(body []byte) []string {
	matches := wikilinkRe.FindAllSubmatch(body, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		target, _, _ := strings.Cut(string(m[1]), "|")
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out
}

// IsExternal reports whether dest points off-site.
func IsExternal(dest string) bool {
	d := strings.ToLower(dest)
	return strings.HasPrefix(d, "http://") || strings.HasPrefix(d, "https://") ||
		strings.HasPrefix(d, "mailto:") || strings.HasPrefix(d, "www.")
}

// Report summarizes one document.
type Report struct {
	Path        string   `json:"path"`
	Generator   string   `json:"generator"`
	Links       []Link   `json:"links"`
	Wikilinks   []string `json:"wikilinks,omitempty"`
	Images      int      `json:"images"`
	Callouts    int      `json:"callouts"`
	Converted   int      `json:"converted"`
	Unconverted int      `json:"unconverted"`
}

// Document builds the report for a single document. Unconverted counts only
// the constructs a conversion for gen would still rewrite.
func Document(path string, content []byte, gen convert.Generator) Report {
	body := frontmatter.Split(content).Body
	r := Report{Path: path, Generator: gen.String(), Links: Links(body), Wikilinks: Wikilinks(body)}
	for _, o := range convert.Scan(string(body)) {
		switch o.Kind {
		case convert.KindImage:
			r.Images++
		case convert.KindCallout:
			r.Callouts++
		}
		switch {
		case o.Converted():
			r.Converted++
		case o.Pending(gen):
			r.Unconverted++
		}
	}
	return r
}

// Site reports every document under the store's root.
func Site(store storage.Provider, gen convert.Generator) ([]Report, error) {
	metas, err := store.List("")
	if err != nil {
		return nil, err
	}
	reports := make([]Report, 0, len(metas))
	for _, m := range metas {
		data, err := store.Read(m.Path)
		if err != nil {
			return nil, fmt.Errorf("inspect: %s: %w", m.Path, err)
		}
		reports = append(reports, Document(m.Path, data, gen))
	}
	return reports, nil
}
