package dom

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Class names used by editor artifacts that carry no content.
const (
	MarkerClass = "mce-marker"
	CaretClass  = "tpl-caret"
)

// inlineWrappers are attribute-free formatting elements the engine leaves
// around the caret after toggling a format.
var inlineWrappers = map[atom.Atom]bool{
	atom.Span: true, atom.Font: true, atom.B: true, atom.I: true,
	atom.Em: true, atom.Strong: true, atom.U: true,
}

// IsNoise reports whether n is structural noise: whitespace-only text, an
// editor bookmark, marker or bogus element (placeholders included), a
// comment, or an empty inline wrapper holding only noise. Widgets are never
// noise.
func IsNoise(n *html.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type {
	case html.TextNode:
		return IsBlankText(n.Data)
	case html.CommentNode:
		return true
	case html.ElementNode:
	default:
		return false
	}
	if IsWidget(n) {
		return false
	}
	if isArtifact(n) {
		return true
	}
	if !inlineWrappers[n.DataAtom] || len(n.Attr) > 0 {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !IsNoise(c) {
			return false
		}
	}
	return true
}

// isArtifact reports elements explicitly tagged as internal editor state.
func isArtifact(n *html.Node) bool {
	if v, ok := Attr(n, "data-mce-type"); ok && v == "bookmark" {
		return true
	}
	if _, ok := Attr(n, "data-mce-bogus"); ok {
		return true
	}
	if _, ok := Attr(n, "data-mce-caret"); ok {
		return true
	}
	return HasClass(n, MarkerClass) || HasClass(n, CaretClass)
}

// IsBlankText reports whether s holds only whitespace, no-break spaces,
// zero-width characters or byte-order marks. The empty string is blank.
func IsBlankText(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\v',
			'\u00a0', '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
			continue
		}
		return false
	}
	return true
}
