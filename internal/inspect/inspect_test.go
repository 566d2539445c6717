package inspect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starford/kramify/internal/convert"
	"github.com/starford/kramify/internal/storage"
)

func TestLinks(t *testing.T) {
	body := []byte("See [site](https://example.com) and [local](notes/a.md).\n\n" +
		"![pic](img/p.png)\n\n<https://auto.example.org>\n")

	links := Links(body)
	require.Equal(t, []Link{
		{Kind: LinkKindInline, Destination: "https://example.com", External: true},
		{Kind: LinkKindInline, Destination: "notes/a.md", External: false},
		{Kind: LinkKindImage, Destination: "img/p.png", External: false},
		{Kind: LinkKindAuto, Destination: "https://auto.example.org", External: true},
	}, links)
}

func TestLinksEmpty(t *testing.T) {
	require.Empty(t, Links([]byte("just prose\n")))
}

func TestDocumentCounts(t *testing.T) {
	content := []byte("---\ntitle: \"[h](https://header.example)\"\n---\n" +
		"[a](https://example.com){: target=\"_blank\" rel=\"noopener noreferrer\" }\n\n" +
		"![img](p.png) and [local](notes/b.md)\n\n" +
		"> [!note]\n> body\n")

	r := Document("a.md", content, convert.Jekyll)
	require.Equal(t, "a.md", r.Path)
	require.Equal(t, "jekyll", r.Generator)
	require.Equal(t, 1, r.Images)
	require.Equal(t, 1, r.Callouts)
	require.Equal(t, 1, r.Converted)
	require.Equal(t, 2, r.Unconverted)
	for _, l := range r.Links {
		require.NotEqual(t, "https://header.example", l.Destination)
	}
}

func TestDocumentPendingFollowsGenerator(t *testing.T) {
	content := []byte("[local](notes/b.md)\n\n> [!tip]\n> body\n")

	require.Equal(t, 1, Document("a.md", content, convert.Jekyll).Unconverted)
	require.Equal(t, 0, Document("a.md", content, convert.MkDocs).Unconverted)
}

func TestSite(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("[x](https://example.com)\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("[x](https://example.com)\n"), 0o644))

	store, err := storage.NewFS(root)
	require.NoError(t, err)

	reports, err := Site(store, convert.MkDocs)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.Equal(t, "a.md", reports[0].Path)
	require.Len(t, reports[0].Links, 1)
	require.True(t, reports[0].Links[0].External)
}

func TestWikilinks(t *testing.T) {
	body := []byte("See [[Alpha]], [[beta|Beta]] and [[Alpha|again]].\n[[ ]] [[gamma]]\n")
	require.Equal(t, []string{"Alpha", "beta", "gamma"}, Wikilinks(body))
}

func TestWikilinksNone(t *testing.T) {
	require.Nil(t, Wikilinks([]byte("[not](a.md) a wikilink\n")))
}
