package frontmatter

import (
	"bytes"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Frontmatter keys maintained by Normalize.
const (
	KeyID          = "id"
	KeySlug        = "slug"
	KeyTitle       = "title"
	KeyLastUpdated = "last_updated"
)

// LastUpdatedLayout is the timestamp format of the last_updated field.
const LastUpdatedLayout = "2006-01-02 15:04:05"

// writeSkew is added to the file's mtime so the stored timestamp still
// covers the write that stores it.
const writeSkew = 120 * time.Second

// Fields are the derived header values for one document.
type Fields struct {
	ID          string
	Slug        string
	Title       string
	LastUpdated string
}

// Derive computes all fields for the document at relPath (relative to the
// content root) last modified at modTime.
func Derive(relPath string, modTime time.Time) Fields {
	return Fields{
		ID:          ID(relPath),
		Slug:        Slug(relPath),
		Title:       Title(relPath),
		LastUpdated: LastUpdated(modTime),
	}
}

type replacement struct{ old, new string }

// replaceAll applies replacements one after another, in order.
func replaceAll(s string, rs ...replacement) string {
	for _, r := range rs {
		s = strings.ReplaceAll(s, r.old, r.new)
	}
	return s
}

// Title is the file name without the .md extension.
func Title(relPath string) string {
	return strings.TrimSuffix(path.Base(filepath.ToSlash(relPath)), ".md")
}

// ID is the lower-cased, dash-separated file name.
func ID(relPath string) string {
	return strings.ToLower(replaceAll(Title(relPath),
		replacement{"&", "and"},
		replacement{",", ""},
		replacement{"(", ""},
		replacement{")", ""},
		replacement{" - ", "-"},
		replacement{"  ", " "},
		replacement{" ", "-"},
	))
}

// Slug is the URL path of the document. Top-level documents map to "/";
// an intermediate index ("x/x") maps to its folder.
func Slug(relPath string) string {
	p := "/" + strings.TrimPrefix(filepath.ToSlash(relPath), "/")
	p = strings.ToLower(strings.TrimSuffix(p, ".md"))
	p = strings.ReplaceAll(p, "'", "")

	if strings.Count(p, "/") == 1 {
		return "/"
	}

	p = replaceAll(p,
		replacement{"&", "and"},
		replacement{"(", ""},
		replacement{")", ""},
		replacement{" - ", "-"},
		replacement{".", ""},
		replacement{"  ", " "},
		replacement{" ", "-"},
	)

	i := strings.LastIndex(p, "/")
	parent, leaf := p[:i], p[i+1:]
	j := strings.LastIndex(parent, "/")
	folder := parent[j+1:]
	if leaf == folder {
		return parent
	}
	return p
}

// LastUpdated formats modTime plus the write skew.
func LastUpdated(modTime time.Time) string {
	return modTime.Add(writeSkew).Format(LastUpdatedLayout)
}

// NeedsUpdate reports whether the header must be regenerated: when forced,
// when the header lacks last_updated, or when the file changed after it.
func NeedsUpdate(fields map[string]any, modTime time.Time, force bool) bool {
	if force {
		return true
	}
	var stamp time.Time
	switch v := fields[KeyLastUpdated].(type) {
	case time.Time:
		// Unquoted timestamps decode as UTC; the field holds local wall time.
		stamp = time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), 0, time.Local)
	case string:
		t, err := time.ParseInLocation(LastUpdatedLayout, v, time.Local)
		if err != nil {
			return true
		}
		stamp = t
	default:
		return true
	}
	return modTime.Truncate(time.Second).After(stamp)
}

// Normalize rewrites the header of content with derived fields. Other keys
// and the body are preserved. The boolean is false when nothing changed.
func Normalize(content []byte, relPath string, modTime time.Time, force bool) ([]byte, bool, error) {
	doc := Split(content)
	fields, err := Parse(content)
	if err != nil {
		return nil, false, err
	}
	if !NeedsUpdate(fields, modTime, force) {
		return content, false, nil
	}

	f := Derive(relPath, modTime)
	fields[KeyID] = f.ID
	fields[KeySlug] = f.Slug
	fields[KeyTitle] = f.Title
	fields[KeyLastUpdated] = f.LastUpdated

	header, err := Encode(fields)
	if err != nil {
		return nil, false, err
	}
	body := doc.Body
	if !doc.HasHeader() {
		header = append(header, '\n')
	}
	out := Document{Header: header}.Join(body)
	return out, !bytes.Equal(out, content), nil
}
