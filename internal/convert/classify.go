package convert

import "strings"

// Kind identifies a recognized construct.
type Kind string

// Construct kinds.
const (
	KindImage   Kind = "image"
	KindLink    Kind = "link"
	KindCallout Kind = "callout"
)

// Occurrence is one located construct in a document. Offsets refer to the text
// the occurrence was scanned from and are invalid once that text is rewritten.
type Occurrence struct {
	Kind  Kind
	Start int
	End   int

	// Links and images.
	Description string
	Target      string
	Title       string
	HasTitle    bool

	// Callouts.
	CalloutType  string
	CalloutTitle string
	Body         string

	// Attributes is the trailing "{: ... }" block when the construct was
	// already converted.
	Attributes string
}

// Converted reports whether the construct already carries an attribute block.
func (o Occurrence) Converted() bool {
	return o.Attributes != ""
}

// findLinks returns every link and image occurrence in text, left to right.
func findLinks(text string) []Occurrence {
	matches := linkRe.FindAllStringSubmatchIndex(text, -1)
	out := make([]Occurrence, 0, len(matches))
	for _, m := range matches {
		o := Occurrence{
			Kind:        KindLink,
			Start:       m[0],
			End:         m[1],
			Description: text[m[2]:m[3]],
			Target:      text[m[4]:m[5]],
		}
		if text[m[0]] == '!' {
			o.Kind = KindImage
		}
		if m[6] >= 0 {
			o.Title = text[m[6]:m[7]]
			o.HasTitle = true
		}
		if m[8] >= 0 {
			o.Attributes = text[m[8]:m[9]]
			// The attribute block is not part of the replaced span.
			o.End = m[8]
		}
		out = append(out, o)
	}
	return out
}

// findCallouts returns every callout occurrence in text, left to right. A
// header nested inside an earlier callout's body is part of that body.
func findCallouts(text string) []Occurrence {
	var out []Occurrence
	last := 0
	for _, m := range calloutHeaderRe.FindAllStringSubmatchIndex(text, -1) {
		if m[0] < last {
			continue
		}
		o, ok := scanCallout(text, m)
		if !ok {
			continue
		}
		out = append(out, o)
		last = o.End
	}
	return out
}

// scanCallout extends a header match over the callout body.
func scanCallout(text string, m []int) (Occurrence, bool) {
	headerEnd := m[1]
	if headerEnd >= len(text) {
		return Occurrence{}, false
	}

	o := Occurrence{
		Kind:         KindCallout,
		Start:        m[0],
		CalloutType:  text[m[2]:m[3]],
		CalloutTitle: strings.TrimSpace(text[m[4]:m[5]]),
	}

	start := headerEnd + 1
	end := lineEnd(text, start)
	first := text[start:end]
	if first == "" {
		return Occurrence{}, false
	}
	if isAttributeBlock(first) {
		o.End = headerEnd
		o.Attributes = first
		return o, true
	}

	bodyEnd := end
	for bodyEnd < len(text) {
		next := bodyEnd + 1
		e := lineEnd(text, next)
		line := text[next:e]
		if isAttributeBlock(line) {
			o.Attributes = line
			break
		}
		if !isCalloutBodyLine(line) {
			break
		}
		bodyEnd = e
	}

	o.End = bodyEnd
	o.Body = text[start:bodyEnd]
	return o, true
}

// Pending reports whether the engine would still rewrite o for gen.
func (o Occurrence) Pending(gen Generator) bool {
	return accept(o, gen)
}

// accept decides whether an occurrence is rewritten for gen.
func accept(o Occurrence, gen Generator) bool {
	if o.Converted() {
		return false
	}
	switch o.Kind {
	case KindLink:
		return strings.HasPrefix(o.Target, "http")
	case KindCallout:
		return gen != MkDocs
	default:
		return true
	}
}
