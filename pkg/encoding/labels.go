// Package encoding normalises free-form item names for use as asset labels.
package encoding

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Label converts a display name to its label form: NFKC-normalised, with
// control characters dropped and runs of whitespace collapsed to one space.
// Full-width forms common in Japanese item names become their ASCII forms.
func Label(name string) string {
	name = norm.NFKC.String(name)

	var b strings.Builder
	b.Grow(len(name))
	space := false
	for _, r := range name {
		switch {
		case unicode.IsSpace(r):
			space = b.Len() > 0
		case unicode.IsControl(r):
		default:
			if space {
				b.WriteByte(' ')
				space = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SameLabel reports whether two names produce the same label ignoring case.
func SameLabel(a, b string) bool {
	fold := cases.Fold()
	return fold.String(Label(a)) == fold.String(Label(b))
}

// Labels returns base followed by the label of each name, skipping empty
// and case-insensitive duplicate labels.
func Labels(base string, names ...string) []string {
	out := []string{base}
	for _, n := range names {
		l := Label(n)
		if l == "" {
			continue
		}
		dup := false
		for _, have := range out {
			if SameLabel(have, l) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, l)
		}
	}
	return out
}
