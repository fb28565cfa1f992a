// Package stringdiff highlights the differing regions of two strings.
//
// The highlighter runs a sequence matcher over the runes of both inputs and
// wraps every region that is not shared in a pair of markers:
//
//	l, r := stringdiff.Highlight("abcdef", "abxdef")
//	// l == "ab<c>def", r == "ab<x>def"
//
// Results are best for single-line input; multi-line text is matched rune by
// rune like any other text.
package stringdiff

import (
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
)

const (
	// DefaultOpen marks the start of a differing region.
	DefaultOpen = "<"
	// DefaultClose marks the end of a differing region.
	DefaultClose = ">"
)

// Highlighter wraps differing regions with Open and Close.
type Highlighter struct {
	Open  string
	Close string

	// wrap overrides Open/Close when set (used for terminal colors).
	wrap func(string) string
}

// Default is the plain-text highlighter used by Highlight.
var Default = Highlighter{Open: DefaultOpen, Close: DefaultClose}

// NewColorHighlighter returns a highlighter that paints differing regions
// red instead of using textual markers. When color output is disabled
// (color.NoColor) it falls back to the default markers.
func NewColorHighlighter() Highlighter {
	if color.NoColor {
		return Default
	}
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	return Highlighter{
		wrap: func(s string) string { return red(s) },
	}
}

// Highlight marks the differences between l and r with the default markers.
func Highlight(l, r string) (string, string) {
	return Default.Highlight(l, r)
}

// Highlight returns l and r with every region not present in the other
// string wrapped in markers.
func (h Highlighter) Highlight(l, r string) (string, string) {
	split := splitRunes
	if !utf8.ValidString(l) || !utf8.ValidString(r) {
		split = splitBytes
	}
	a := split(l)
	b := split(r)

	matcher := difflib.NewMatcher(a, b)

	var lb, rb strings.Builder
	for _, op := range matcher.GetOpCodes() {
		left := strings.Join(a[op.I1:op.I2], "")
		right := strings.Join(b[op.J1:op.J2], "")
		switch op.Tag {
		case 'e':
			lb.WriteString(left)
			rb.WriteString(right)
		case 'r':
			lb.WriteString(h.mark(left))
			rb.WriteString(h.mark(right))
		case 'd':
			lb.WriteString(h.mark(left))
		case 'i':
			rb.WriteString(h.mark(right))
		}
	}
	return lb.String(), rb.String()
}

func (h Highlighter) mark(s string) string {
	if h.wrap != nil {
		return h.wrap(s)
	}
	return h.Open + s + h.Close
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// splitBytes keeps invalid UTF-8 intact; ranging over it would turn each
// bad byte into U+FFFD.
func splitBytes(s string) []string {
	out := make([]string, 0, len(s))
	for i := 0; i < len(s); i++ {
		out = append(out, s[i:i+1])
	}
	return out
}
