package convert

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/starford/kramify/internal/apperr"
)

// DefaultImageWidth is the pixel width applied to images without a "|N" suffix.
const DefaultImageWidth = 640

const (
	linkAttrs       = `target="_blank" rel="noopener noreferrer"`
	mkdocsLinkStyle = `style="text-decoration:underline"`
)

// Severity is the canonical callout level understood by the Jekyll theme.
type Severity string

// Canonical severities.
const (
	SeverityTip     Severity = "tip"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// CalloutMapping maps each canonical severity to the Obsidian callout
// keywords rendered with it.
type CalloutMapping map[Severity][]string

// DefaultCalloutMapping returns the stock keyword mapping.
func DefaultCalloutMapping() CalloutMapping {
	return CalloutMapping{
		SeverityTip:     {"tip", "hint", "important"},
		SeverityInfo:    {"info", "note"},
		SeverityWarning: {"warning", "caution", "attention"},
		SeverityDanger:  {"danger", "error"},
	}
}

// Validate checks that only canonical severities are used and that every
// keyword maps to exactly one severity.
func (m CalloutMapping) Validate() error {
	_, err := m.lookup()
	return err
}

// lookup inverts the mapping into keyword -> severity.
func (m CalloutMapping) lookup() (map[string]Severity, error) {
	severities := make([]Severity, 0, len(m))
	for s := range m {
		severities = append(severities, s)
	}
	sort.Slice(severities, func(i, j int) bool { return severities[i] < severities[j] })

	out := make(map[string]Severity)
	for _, s := range severities {
		switch s {
		case SeverityTip, SeverityInfo, SeverityWarning, SeverityDanger:
		default:
			return nil, fmt.Errorf("%w: unknown severity %q", apperr.ErrInvalidMapping, s)
		}
		for _, kw := range m[s] {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if prev, dup := out[kw]; dup && prev != s {
				return nil, fmt.Errorf("%w: %q maps to both %s and %s", apperr.ErrInvalidMapping, kw, prev, s)
			}
			out[kw] = s
		}
	}
	return out, nil
}

// render produces the replacement text for an accepted occurrence.
func (e *Engine) render(o Occurrence, gen Generator) string {
	switch o.Kind {
	case KindImage:
		return renderImage(o, gen, e.imageWidth)
	case KindLink:
		return renderLink(o, gen)
	case KindCallout:
		return renderCallout(o, e.severity(o.CalloutType))
	}
	return ""
}

// severity resolves a callout keyword, defaulting to info.
func (e *Engine) severity(kind string) Severity {
	if s, ok := e.severities[strings.ToLower(kind)]; ok {
		return s
	}
	return SeverityInfo
}

// destination rebuilds the parenthesised part of a link, keeping the title.
func destination(o Occurrence) string {
	if o.HasTitle {
		return "(" + o.Target + `"` + o.Title + `")`
	}
	return "(" + o.Target + ")"
}

func renderImage(o Occurrence, gen Generator, defaultWidth int) string {
	desc := o.Description
	width := strconv.Itoa(defaultWidth)
	if parts := strings.Split(o.Description, "|"); len(parts) > 1 {
		desc = parts[0]
		if w := strings.TrimSpace(parts[1]); w != "" {
			width = w
		}
	}

	if gen == MkDocs {
		return fmt.Sprintf(`![%s]%s{: style="width:%spx" }`, desc, destination(o), width)
	}
	return fmt.Sprintf(`![%s]%s{: width="%s" .shadow }`, desc, destination(o), width)
}

func renderLink(o Occurrence, gen Generator) string {
	desc := strings.ReplaceAll(o.Description, "|", `\|`)
	attrs := linkAttrs
	if gen == MkDocs {
		attrs += " " + mkdocsLinkStyle
	}
	return fmt.Sprintf("[%s]%s{: %s }", desc, destination(o), attrs)
}

func renderCallout(o Occurrence, s Severity) string {
	attrs := fmt.Sprintf("{: .prompt-%s }", s)
	if o.CalloutTitle != "" {
		return fmt.Sprintf("> **%s**  \n%s\n%s", o.CalloutTitle, o.Body, attrs)
	}
	return o.Body + "\n" + attrs
}
