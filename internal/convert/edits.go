package convert

import (
	"errors"
	"fmt"
	"sort"
)

// edit replaces text[start:end] with replacement. Offsets refer to the text
// the edit was computed against.
type edit struct {
	start       int
	end         int
	replacement string
}

// applyEdits applies non-overlapping edits from the end of the text toward
// the beginning so earlier offsets stay valid.
func applyEdits(text string, edits []edit) (string, error) {
	if len(edits) == 0 {
		return text, nil
	}

	sorted := make([]edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].start == sorted[j].start {
			return sorted[i].end > sorted[j].end
		}
		return sorted[i].start > sorted[j].start
	})

	for i, e := range sorted {
		if e.start < 0 || e.end < e.start || e.end > len(text) {
			return "", fmt.Errorf("convert: invalid edit [%d:%d] for %d bytes", e.start, e.end, len(text))
		}
		if i > 0 && e.end > sorted[i-1].start {
			return "", errors.New("convert: overlapping edits")
		}
	}

	out := text
	for _, e := range sorted {
		out = out[:e.start] + e.replacement + out[e.end:]
	}
	return out, nil
}
