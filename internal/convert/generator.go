package convert

import (
	"fmt"
	"strings"

	"github.com/starford/kramify/internal/apperr"
)

// Generator selects which rendering rules apply to a document.
type Generator string

// Supported generators.
const (
	MkDocs Generator = "mkdocs"
	Jekyll Generator = "jekyll"
)

// ParseGenerator maps a config or request value onto a Generator.
func ParseGenerator(s string) (Generator, error) {
	switch g := Generator(strings.ToLower(strings.TrimSpace(s))); g {
	case MkDocs, Jekyll:
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", apperr.ErrUnknownGenerator, s)
}

// Valid reports whether g is one of the supported generators.
func (g Generator) Valid() bool {
	return g == MkDocs || g == Jekyll
}

func (g Generator) String() string { return string(g) }
