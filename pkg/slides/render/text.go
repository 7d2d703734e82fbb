package render

import (
	"strings"

	"github.com/benjaminschreck/go-slides/pkg/slides/content"
)

// Token delimiters for text placeholders.
const (
	OpenMarker  = "{{"
	CloseMarker = "}}"
)

// Resolution is the outcome of resolving one paragraph's text.
type Resolution struct {
	Text string
	// Resolved lists the names that were substituted from the map, in map order.
	Resolved []string
	// Unresolved lists the token spans that were replaced by the fallback, left to right.
	Unresolved []string
}

// Changed reports whether any token was replaced.
func (r Resolution) Changed() bool {
	return len(r.Resolved) > 0 || len(r.Unresolved) > 0
}

// HasToken reports whether text contains an opening marker followed by a closing marker.
func HasToken(text string) bool {
	_, _, ok := nextToken(text)
	return ok
}

// ResolveText substitutes every {{name}} in text whose name is in m, then replaces any
// remaining {{...}} span with fallback. An opening marker without a later closing marker is
// left untouched.
func ResolveText(text string, m *content.Map, fallback string) Resolution {
	res := Resolution{Text: text}
	if !strings.Contains(text, OpenMarker) {
		return res
	}

	m.Each(func(name string, v content.Value) {
		token := OpenMarker + name + CloseMarker
		if strings.Contains(res.Text, token) {
			res.Text = strings.ReplaceAll(res.Text, token, v.String())
			res.Resolved = append(res.Resolved, name)
		}
	})

	for {
		start, end, ok := nextToken(res.Text)
		if !ok {
			break
		}
		span := res.Text[start:end]
		res.Text = strings.ReplaceAll(res.Text, span, fallback)
		res.Unresolved = append(res.Unresolved, span)
	}

	return res
}

// nextToken finds the first {{ and the first }} after it.
func nextToken(text string) (start, end int, ok bool) {
	start = strings.Index(text, OpenMarker)
	if start < 0 {
		return 0, 0, false
	}
	closeAt := strings.Index(text[start+len(OpenMarker):], CloseMarker)
	if closeAt < 0 {
		return 0, 0, false
	}
	end = start + len(OpenMarker) + closeAt + len(CloseMarker)
	return start, end, true
}
