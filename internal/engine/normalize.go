package engine

import (
	"github.com/xonecas/tplsel/internal/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// normalize gives every run of inline content a paragraph to live in, so each
// caret position belongs to exactly one line. Roots (body, cells, quotes)
// never hold inline content directly, and an empty body gets one empty
// paragraph.
func normalize(n *html.Node) {
	if dom.IsWidget(n) {
		return
	}
	if dom.IsRoot(n) || dom.IsBlock(n) && hasBlockChild(n) {
		wrapRuns(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsBlock(c) {
			normalize(c)
		}
	}
	if dom.IsElement(n, atom.Body) && !hasBlockChild(n) {
		p := dom.Element(atom.P)
		p.AppendChild(dom.Placeholder())
		n.AppendChild(p)
	}
	if isLine(n) && n.FirstChild == nil {
		n.AppendChild(dom.Placeholder())
	}
}

// wrapRuns moves each run of inline siblings under n that holds something
// other than noise into a new paragraph.
func wrapRuns(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		if dom.IsBlock(c) {
			c = c.NextSibling
			continue
		}
		var run []*html.Node
		real := false
		for ; c != nil && !dom.IsBlock(c); c = c.NextSibling {
			run = append(run, c)
			if !dom.IsNoise(c) {
				real = true
			}
		}
		if !real {
			continue
		}
		p := dom.Element(atom.P)
		n.InsertBefore(p, run[0])
		for _, m := range run {
			dom.Detach(m)
			p.AppendChild(m)
		}
	}
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsBlock(c) {
			return true
		}
	}
	return false
}

// isLine reports whether n is a block that holds inline content only: one
// line of the document.
func isLine(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode || dom.IsWidget(n) {
		return false
	}
	if !dom.IsSplittable(n) && !dom.IsRoot(n) {
		return false
	}
	if dom.IsElement(n, atom.Body) {
		return false
	}
	return !hasBlockChild(n)
}
