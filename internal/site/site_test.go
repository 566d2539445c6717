package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starford/kramify/internal/apperr"
	"github.com/starford/kramify/internal/convert"
)

const mkdocsYAML = `site_name: Notes
docs_dir: content
markdown_extensions:
  - pymdownx.emoji:
      emoji_index: !!python/name:material.extensions.emoji.twemoji
`

func TestDetect_AutoMkDocs(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "mkdocs.yml")
	require.NoError(t, os.WriteFile(cfg, []byte(mkdocsYAML), 0o644))

	s, err := Detect(Options{Generator: Auto, MkDocsConfig: cfg})
	require.NoError(t, err)
	require.Equal(t, convert.MkDocs, s.Generator)
	require.Equal(t, filepath.Join(dir, "content"), s.Root)
}

func TestDetect_AutoJekyll(t *testing.T) {
	s, err := Detect(Options{MkDocsConfig: filepath.Join(t.TempDir(), "mkdocs.yml")})
	require.NoError(t, err)
	require.Equal(t, convert.Jekyll, s.Generator)
	require.Equal(t, DefaultJekyllDir, s.Root)
}

func TestDetect_ExplicitJekyllDir(t *testing.T) {
	s, err := Detect(Options{Generator: "jekyll", JekyllDir: "site/_posts"})
	require.NoError(t, err)
	require.Equal(t, "site/_posts", s.Root)
}

func TestDetect_MkDocsDefaultDocsDir(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "mkdocs.yml")
	require.NoError(t, os.WriteFile(cfg, []byte("site_name: x\n"), 0o644))

	s, err := Detect(Options{Generator: "mkdocs", MkDocsConfig: cfg})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, DefaultMkDocsDocs), s.Root)
}

func TestDetect_ExplicitMkDocsMissingConfig(t *testing.T) {
	_, err := Detect(Options{Generator: "mkdocs", MkDocsConfig: filepath.Join(t.TempDir(), "none.yml")})
	require.Error(t, err)
}

func TestDetect_UnknownGenerator(t *testing.T) {
	_, err := Detect(Options{Generator: "hugo"})
	require.ErrorIs(t, err, apperr.ErrUnknownGenerator)
}
