// Package frontmatter splits YAML headers from Markdown bodies and derives
// the id, slug, title and last_updated fields the site expects.
package frontmatter

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

const delim = "---"

// yamlFormat restricts adrg/frontmatter to "---" delimited YAML decoded
// with yaml.v3, so nested maps come back as map[string]any.
var yamlFormat = frontmatter.NewFormat(delim, delim, yaml.Unmarshal)

// Document is a Markdown file split into its raw header and body. Header
// includes both delimiter lines; Header+Body is the original content.
type Document struct {
	Header []byte
	Body   []byte
}

// HasHeader reports whether the document starts with a frontmatter block.
func (d Document) HasHeader() bool {
	return len(d.Header) > 0
}

// Join reassembles the document around a new body.
func (d Document) Join(body []byte) []byte {
	out := make([]byte, 0, len(d.Header)+len(body))
	out = append(out, d.Header...)
	return append(out, body...)
}

// Split separates a leading "---" block from the body. A missing closing
// delimiter means there is no header and the whole content is body.
func Split(content []byte) Document {
	first := bytes.IndexByte(content, '\n')
	if first < 0 || string(bytes.TrimRight(content[:first], "\r")) != delim {
		return Document{Body: content}
	}

	pos := first + 1
	for pos < len(content) {
		end := bytes.IndexByte(content[pos:], '\n')
		next := len(content)
		line := content[pos:]
		if end >= 0 {
			next = pos + end + 1
			line = content[pos : pos+end]
		}
		if string(bytes.TrimRight(line, "\r")) == delim {
			return Document{Header: content[:next], Body: content[next:]}
		}
		pos = next
	}
	return Document{Body: content}
}

// Parse decodes the header fields of content. Documents without a header
// yield an empty map.
func Parse(content []byte) (map[string]any, error) {
	fields := map[string]any{}
	if !Split(content).HasHeader() {
		return fields, nil
	}
	if _, err := frontmatter.Parse(bytes.NewReader(content), &fields, yamlFormat); err != nil {
		return nil, fmt.Errorf("frontmatter: parse: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Encode renders fields as a delimited YAML header with sorted keys.
func Encode(fields map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(delim + "\n")
	if len(fields) > 0 {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(fields); err != nil {
			_ = enc.Close()
			return nil, fmt.Errorf("frontmatter: encode: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("frontmatter: encode: %w", err)
		}
	}
	buf.WriteString(delim + "\n")
	return buf.Bytes(), nil
}
