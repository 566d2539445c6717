// Package site locates the content root and generator of the site being built.
package site

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/starford/kramify/internal/convert"
)

// Detection defaults.
const (
	Auto                = "auto"
	DefaultMkDocsConfig = "mkdocs.yml"
	DefaultMkDocsDocs   = "docs"
	DefaultJekyllDir    = "_posts"
)

// Options controls detection. Generator is "auto", "mkdocs" or "jekyll".
type Options struct {
	Generator    string
	MkDocsConfig string
	JekyllDir    string
}

// Site is the detected content root and its generator.
type Site struct {
	Root      string
	Generator convert.Generator
}

// Detect resolves the content root. In auto mode an existing MkDocs config
// selects MkDocs, otherwise the Jekyll posts directory is used.
func Detect(opts Options) (Site, error) {
	if opts.MkDocsConfig == "" {
		opts.MkDocsConfig = DefaultMkDocsConfig
	}
	if opts.JekyllDir == "" {
		opts.JekyllDir = DefaultJekyllDir
	}

	gen := opts.Generator
	if gen == "" || gen == Auto {
		gen = string(convert.Jekyll)
		if _, err := os.Stat(opts.MkDocsConfig); err == nil {
			gen = string(convert.MkDocs)
		}
	}

	g, err := convert.ParseGenerator(gen)
	if err != nil {
		return Site{}, err
	}

	if g == convert.Jekyll {
		return Site{Root: opts.JekyllDir, Generator: g}, nil
	}

	docsDir, err := MkDocsDocsDir(opts.MkDocsConfig)
	if err != nil {
		return Site{}, err
	}
	return Site{Root: docsDir, Generator: g}, nil
}

// MkDocsDocsDir reads docs_dir from an MkDocs config file, resolved relative
// to the file. A missing key yields MkDocs' own default.
func MkDocsDocsDir(configPath string) (string, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("site: read mkdocs config: %w", err)
	}

	// Decode into a node tree: real configs carry !!python/name tags that
	// cannot be decoded into Go values.
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("site: parse mkdocs config: %w", err)
	}

	dir := DefaultMkDocsDocs
	if v, ok := lookupScalar(&doc, "docs_dir"); ok && v != "" {
		dir = v
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(filepath.Dir(configPath), dir)
	}
	return dir, nil
}

var errNotMapping = errors.New("not a mapping")

func lookupScalar(doc *yaml.Node, key string) (string, bool) {
	root, err := topMapping(doc)
	if err != nil {
		return "", false
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if k.Value == key && v.Kind == yaml.ScalarNode {
			return v.Value, true
		}
	}
	return "", false
}

func topMapping(doc *yaml.Node) (*yaml.Node, error) {
	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil, errNotMapping
	}
	return n, nil
}
