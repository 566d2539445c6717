// Package convert rewrites Obsidian-flavored Markdown links, images and
// callouts into Kramdown for MkDocs or Jekyll sites.
//
// The engine recognizes a fixed set of patterns and edits them in place;
// everything else in a document is preserved byte for byte. Constructs that
// already carry a trailing "{: ... }" attribute block are left alone, so
// rewriting is idempotent and can run before every build.
package convert

import (
	"fmt"

	"github.com/starford/kramify/internal/apperr"
)

// Engine holds the rendering configuration. It has no mutable state and is
// safe for concurrent use.
type Engine struct {
	imageWidth        int
	severities        map[string]Severity
	indexName         string
	excluded          map[string]struct{}
	excludedWikilinks map[string]struct{}
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	imageWidth        int
	mapping           CalloutMapping
	indexName         string
	excluded          []string
	excludedWikilinks []string
}

// WithDefaultImageWidth sets the width used for images without a "|N" suffix.
func WithDefaultImageWidth(px int) Option {
	return func(c *engineConfig) {
		if px > 0 {
			c.imageWidth = px
		}
	}
}

// WithCalloutMapping replaces the callout keyword mapping.
func WithCalloutMapping(m CalloutMapping) Option {
	return func(c *engineConfig) {
		if len(m) > 0 {
			c.mapping = m
		}
	}
}

// WithIndexName sets the base name (without extension) of the index document.
func WithIndexName(name string) Option {
	return func(c *engineConfig) {
		if name != "" {
			c.indexName = name
		}
	}
}

// WithExcludedSections sets the link descriptions pruned from the index.
func WithExcludedSections(names ...string) Option {
	return func(c *engineConfig) {
		c.excluded = names
	}
}

// WithExcludedWikilinks sets the wikilink targets pruned from the index.
func WithExcludedWikilinks(targets ...string) Option {
	return func(c *engineConfig) {
		c.excludedWikilinks = targets
	}
}

// NewEngine builds an Engine. It fails only on an invalid callout mapping.
func NewEngine(opts ...Option) (*Engine, error) {
	cfg := engineConfig{
		imageWidth:        DefaultImageWidth,
		mapping:           DefaultCalloutMapping(),
		indexName:         DefaultIndexName,
		excluded:          DefaultExcludedSections,
		excludedWikilinks: DefaultExcludedWikilinks,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	severities, err := cfg.mapping.lookup()
	if err != nil {
		return nil, err
	}

	return &Engine{
		imageWidth:        cfg.imageWidth,
		severities:        severities,
		indexName:         cfg.indexName,
		excluded:          set(cfg.excluded),
		excludedWikilinks: set(cfg.excludedWikilinks),
	}, nil
}

func set(names []string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, name := range names {
		out[name] = struct{}{}
	}
	return out
}

// Result is the outcome of rewriting one document.
type Result struct {
	Content     string
	Images      int
	Links       int
	Callouts    int
	Skipped     int
	PrunedLines int
}

// Converted returns the number of constructs rewritten.
func (r Result) Converted() int {
	return r.Images + r.Links + r.Callouts
}

// Rewrite transforms content for gen. When isIndex is set the index pruner
// runs first. Links and images are rewritten in one pass, callouts in a
// second pass over the result.
func (e *Engine) Rewrite(content string, gen Generator, isIndex bool) (Result, error) {
	if !gen.Valid() {
		return Result{}, fmt.Errorf("%w: %q", apperr.ErrUnknownGenerator, string(gen))
	}

	var res Result
	text := content
	if isIndex {
		text, res.PrunedLines = e.PruneIndex(text)
	}

	text, err := e.pass(text, findLinks(text), gen, &res)
	if err != nil {
		return Result{}, err
	}
	text, err = e.pass(text, findCallouts(text), gen, &res)
	if err != nil {
		return Result{}, err
	}

	res.Content = text
	return res, nil
}

// pass renders the accepted occurrences and applies them as one edit set.
func (e *Engine) pass(text string, occs []Occurrence, gen Generator, res *Result) (string, error) {
	edits := make([]edit, 0, len(occs))
	for _, o := range occs {
		if !accept(o, gen) {
			res.Skipped++
			continue
		}
		edits = append(edits, edit{start: o.Start, end: o.End, replacement: e.render(o, gen)})
		switch o.Kind {
		case KindImage:
			res.Images++
		case KindLink:
			res.Links++
		case KindCallout:
			res.Callouts++
		}
	}
	return applyEdits(text, edits)
}

// Scan returns the occurrences the engine recognizes in content, links and
// images first, then callouts, without rewriting anything.
func Scan(content string) []Occurrence {
	return append(findLinks(content), findCallouts(content)...)
}
