package dom

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// splittable are block elements a paragraph break divides in two.
var splittable = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Pre: true, atom.Address: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

// roots hold blocks but are never split themselves. Inline content directly
// inside one is first wrapped in a paragraph.
var roots = map[atom.Atom]bool{
	atom.Body: true, atom.Td: true, atom.Th: true, atom.Blockquote: true,
	atom.Section: true, atom.Article: true, atom.Aside: true, atom.Header: true,
	atom.Footer: true, atom.Main: true, atom.Nav: true, atom.Figure: true,
}

// otherBlocks are block-level but neither splittable nor roots.
var otherBlocks = map[atom.Atom]bool{
	atom.Ul: true, atom.Ol: true, atom.Table: true, atom.Tbody: true, atom.Thead: true,
	atom.Tfoot: true, atom.Tr: true, atom.Hr: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
	atom.Form: true, atom.Fieldset: true,
}

// IsBlock reports whether n is a block-level element.
func IsBlock(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	return splittable[n.DataAtom] || roots[n.DataAtom] || otherBlocks[n.DataAtom]
}

// IsSplittable reports whether a paragraph break may divide n.
func IsSplittable(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && splittable[n.DataAtom]
}

// IsRoot reports whether n is a block container that is never split.
func IsRoot(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && roots[n.DataAtom]
}

// EnclosingBlock returns the nearest ancestor of n (n excluded) that is a
// splittable block or a root, or nil when n is detached.
func EnclosingBlock(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if IsSplittable(p) || IsRoot(p) {
			return p
		}
	}
	return nil
}

// voids render something visible without text.
var voids = map[atom.Atom]bool{
	atom.Img: true, atom.Hr: true, atom.Input: true, atom.Video: true,
	atom.Audio: true, atom.Iframe: true, atom.Canvas: true, atom.Svg: true,
}

// HasVisibleContent reports whether n contains anything a user would see:
// real text, a widget, or a replaced element. A lone <br> does not count.
func HasVisibleContent(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case IsNoise(c):
			continue
		case c.Type == html.TextNode:
			return true
		case c.Type != html.ElementNode:
			continue
		case IsWidget(c), voids[c.DataAtom]:
			return true
		case HasVisibleContent(c):
			return true
		}
	}
	return false
}

// Placeholder returns the bogus line break inserted into blocks that would
// otherwise collapse visually.
func Placeholder() *html.Node {
	return Element(atom.Br, html.Attribute{Key: "data-mce-bogus", Val: "1"})
}

// IsPlaceholder reports whether n is a bogus line break.
func IsPlaceholder(n *html.Node) bool {
	if !IsElement(n, atom.Br) {
		return false
	}
	v, ok := Attr(n, "data-mce-bogus")
	return ok && v == "1"
}
